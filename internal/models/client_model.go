package models

import (
	"math"
	"time"
)

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// Client carries the cadence rules the scheduler works against.
type Client struct {
	ID              int64        `db:"id" json:"id"`
	Name            string       `db:"name" json:"name"`
	Status          ClientStatus `db:"status" json:"status"`
	WeeklyCapacity  int          `db:"weekly_capacity" json:"weekly_capacity"`
	MonthlyCapacity int          `db:"monthly_capacity" json:"monthly_capacity"` // 0 = no monthly cap
	StrategyPillars []string     `db:"strategy_pillars" json:"strategy_pillars"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

func (c *Client) HasPillar(pillar string) bool {
	for _, p := range c.StrategyPillars {
		if p == pillar {
			return true
		}
	}
	return false
}

// PillarShare is the proportional number of posts each pillar may take over
// a window of the given number of weeks.
func (c *Client) PillarShare(windowWeeks int) int {
	if len(c.StrategyPillars) == 0 {
		return 0
	}
	total := float64(c.WeeklyCapacity * windowWeeks)
	return int(math.Ceil(total / float64(len(c.StrategyPillars))))
}

func (c *Client) Clone() *Client {
	cp := *c
	cp.StrategyPillars = append([]string(nil), c.StrategyPillars...)
	return &cp
}

// Cadence is the mutable part of a client's capacity model.
type Cadence struct {
	WeeklyCapacity  int      `json:"weekly_capacity"`
	MonthlyCapacity int      `json:"monthly_capacity"`
	StrategyPillars []string `json:"strategy_pillars"`
}

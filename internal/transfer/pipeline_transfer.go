package transfer

import "github.com/maheshrc27/editorial-api/internal/models"

type PostCreation struct {
	ClientID  int64           `json:"client_id"`
	Type      models.PostType `json:"type"`
	Pillar    string          `json:"pillar"`
	Script    string          `json:"script"`
	Caption   string          `json:"caption"`
	AssetLink string          `json:"asset_link"`
}

type TransitionRequest struct {
	Status models.PostStatus `json:"status"`
}

type ClientCreation struct {
	Name            string   `json:"name"`
	WeeklyCapacity  int      `json:"weekly_capacity"`
	MonthlyCapacity int      `json:"monthly_capacity"`
	StrategyPillars []string `json:"strategy_pillars"`
}

type ContentRequestCreation struct {
	ClientID    int64  `json:"client_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ContentRequestConversion shapes the draft created from a request.
type ContentRequestConversion struct {
	Type   models.PostType `json:"type"`
	Pillar string          `json:"pillar"`
}

type CommentCreation struct {
	Message string `json:"message"`
}

type UserCreation struct {
	Email            string      `json:"email"`
	Name             string      `json:"name"`
	Role             models.Role `json:"role"`
	AssignedClientID *int64      `json:"assigned_client_id,omitempty"`
}

type PillarSuggestion struct {
	ClientID int64          `json:"client_id"`
	Pillar   string         `json:"pillar"`
	Usage    map[string]int `json:"usage"`
	Share    int            `json:"share"`
}

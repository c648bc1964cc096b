package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/maheshrc27/editorial-api/internal/app"
	job "github.com/maheshrc27/editorial-api/internal/jobs"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newCalendarCommand(ctx *commandContext) *cobra.Command {
	var asUser string
	var from string
	var weeks int

	cmd := &cobra.Command{
		Use:   "calendar <client-id>",
		Short: "Show a client's scheduled posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := parseID(args[0], "client id")
			if err != nil {
				return err
			}
			actorID, err := parseID(asUser, "--as user id")
			if err != nil {
				return err
			}
			start := time.Now().UTC().Truncate(24 * time.Hour)
			if from != "" {
				start, err = time.ParseInLocation(dateLayout, from, time.UTC)
				if err != nil {
					return fmt.Errorf("--from must be a date (YYYY-MM-DD): %w", err)
				}
			}
			if weeks <= 0 {
				return fmt.Errorf("--weeks must be positive")
			}
			end := start.AddDate(0, 0, 7*weeks)

			return ctx.withContainer(cmd.Context(), func(c *app.Container, _ app.Deps) error {
				actor, err := loadActor(cmd.Context(), c, actorID)
				if err != nil {
					return err
				}
				seq, err := c.Services.Queue.GetCalendar(cmd.Context(), actor, clientID, start, end)
				if err != nil {
					return err
				}

				var rows [][]string
				for entry, err := range seq {
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						entry.Date.Format("Mon 2006-01-02 15:04"),
						strconv.FormatInt(entry.Post.ID, 10),
						string(entry.Post.Type),
						entry.Post.Pillar,
						string(entry.Post.Status),
					})
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing scheduled")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Date", "Post", "Type", "Pillar", "Status"},
					rows,
					2,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&asUser, "as", "", "ID of the user the calendar is read as")
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD), defaults to today")
	cmd.Flags().IntVar(&weeks, "weeks", 4, "Number of weeks to show")
	return cmd
}

func newRecalculateCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "recalculate [client-id]",
		Short: "Re-place queued posts against the current cadence",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("pass either a client id or --all")
			}

			return ctx.withContainer(cmd.Context(), func(c *app.Container, _ app.Deps) error {
				if all {
					moved, err := job.NewQueueRecomputeJob(c.Repos.Clients, c.Services.Queue, 0).RecomputeAll(cmd.Context())
					fmt.Fprintf(cmd.OutOrStdout(), "%d posts moved\n", moved)
					return err
				}

				clientID, err := parseID(args[0], "client id")
				if err != nil {
					return err
				}
				moved, err := c.Services.Queue.RecalculateQueue(cmd.Context(), clientID)
				if err != nil {
					return err
				}
				renderMoved(cmd, moved)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Recalculate every active client")
	return cmd
}

func renderMoved(cmd *cobra.Command, moved []*models.Post) {
	if len(moved) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Queue already up to date")
		return
	}
	rows := make([][]string, 0, len(moved))
	for _, p := range moved {
		slot := "-"
		if p.ScheduledAt != nil {
			slot = p.ScheduledAt.Format("Mon 2006-01-02 15:04")
		}
		rows = append(rows, []string{strconv.FormatInt(p.ID, 10), string(p.Status), slot})
	}
	fmt.Fprint(cmd.OutOrStdout(), renderTable(
		[]string{"Post", "Status", "New slot"},
		rows,
		1,
	))
}

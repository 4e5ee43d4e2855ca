package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/ndalama/internal/cli"
	"github.com/Veraticus/ndalama/internal/common"
	"github.com/Veraticus/ndalama/internal/format"
	"github.com/Veraticus/ndalama/internal/model"
	"github.com/Veraticus/ndalama/internal/pacing"
	"github.com/Veraticus/ndalama/internal/service"
	"github.com/Veraticus/ndalama/internal/storage"
	"github.com/spf13/cobra"
)

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Manage savings goals",
		Long: `Create, inspect, and edit savings goals.

Goals are never deleted one at a time. Pause or complete a goal instead, or
use 'ndalama wipe' to start over.`,
		Example: `  # Create a goal
  ndalama goals create "Emergency fund" --target 6000 --target-date 2024-10-27 --frequency monthly

  # See how every goal is pacing
  ndalama goals list

  # Inspect one goal
  ndalama goals show 1`,
	}

	cmd.AddCommand(createGoalCmd())
	cmd.AddCommand(listGoalsCmd())
	cmd.AddCommand(showGoalCmd())
	cmd.AddCommand(editGoalCmd())
	cmd.AddCommand(goalStatusCmd("pause", "Pause a goal", "Paused", model.GoalStatusPaused))
	cmd.AddCommand(goalStatusCmd("complete", "Mark a goal as completed", "Completed", model.GoalStatusCompleted))
	cmd.AddCommand(goalStatusCmd("activate", "Resume a paused or completed goal", "Activated", model.GoalStatusActive))

	return cmd
}

// goalFlags holds the editable goal fields shared by create and edit.
type goalFlags struct {
	target      string
	targetDate  string
	frequency   string
	description string
	purpose     string
	goalType    string
	name        string
	priority    bool
	private     bool
}

func (f *goalFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.target, "target", "", "Target amount")
	cmd.Flags().StringVar(&f.targetDate, "target-date", "", "Date the target should be reached (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.frequency, "frequency", "f", string(model.FrequencyMonthly), "Contribution cadence (daily, weekly, bi-weekly, monthly, ...)")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Goal description")
	cmd.Flags().StringVar(&f.purpose, "purpose", "", "What the money is for")
	cmd.Flags().StringVar(&f.goalType, "type", "savings", "Goal type (savings, investment)")
	cmd.Flags().BoolVar(&f.priority, "priority", false, "Mark as the priority goal")
	cmd.Flags().BoolVar(&f.private, "private", false, "Hide amounts for this goal")
}

func (f *goalFlags) anyChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"name", "target", "target-date", "frequency", "description", "purpose", "type", "priority", "private"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// apply copies every flag the user set onto goal.
func (f *goalFlags) apply(cmd *cobra.Command, goal *model.Goal) error {
	changed := cmd.Flags().Changed

	if changed("name") {
		goal.Name = strings.TrimSpace(f.name)
	}
	if changed("target") {
		target, err := parseAmount(f.target, "target")
		if err != nil {
			return err
		}
		goal.Target = target
	}
	if changed("target-date") {
		date, err := parseDate(f.targetDate)
		if err != nil {
			return common.NewUserError(fmt.Sprintf("invalid target date %q", f.targetDate), err)
		}
		goal.TargetDate = date
	}
	if changed("frequency") || goal.Frequency == "" {
		goal.Frequency = model.ParseFrequency(f.frequency)
		if !goal.Frequency.Known() {
			slog.Warn("Unknown frequency, pacing will use monthly periods", "frequency", f.frequency)
		}
	}
	if changed("type") || goal.Type == "" {
		goalType, err := model.ParseGoalType(f.goalType)
		if err != nil {
			return common.NewUserError(err.Error(), err)
		}
		goal.Type = goalType
	}
	if changed("description") {
		goal.Description = f.description
	}
	if changed("purpose") {
		goal.Purpose = f.purpose
	}
	if changed("priority") {
		goal.IsPriority = f.priority
	}
	if changed("private") {
		goal.IsPrivate = f.private
	}
	return nil
}

func createGoalCmd() *cobra.Command {
	var flags goalFlags

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new goal",
		Long:  `Create a savings goal. The goal starts today (or at --now) and is active.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			now, err := referenceTime()
			if err != nil {
				return err
			}

			goal := model.Goal{
				Name:      strings.TrimSpace(args[0]),
				CreatedAt: now,
				Status:    model.GoalStatusActive,
			}
			if err := flags.apply(cmd, &goal); err != nil {
				return err
			}
			if !goal.TargetDate.IsZero() && !goal.HasValidTimeline() {
				slog.Warn("Target date is not after the start date, pacing will report an invalid timeline",
					"target_date", goal.TargetDate.Format(dateLayout))
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateGoal(ctx, &goal); err != nil {
				return goalError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created goal #%d %s", goal.ID, goal.Name)))
			return nil
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func listGoalsCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals with their pacing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			view, err := loadView(ctx)
			if err != nil {
				return err
			}

			summary := view.summary
			if status != "" {
				summary = summary.Filter(func(g pacing.GoalProgress) bool {
					return strings.EqualFold(string(g.Goal.Status), status)
				})
			}

			out := cmd.OutOrStdout()
			if len(summary.Goals) == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No goals found."))
				return nil
			}

			fmt.Fprintf(out, "%s %s\n", cli.BoldStyle.Render("Total saved:"), format.Amount(summary.TotalSaved, view.settings))
			if p, ok := summary.Priority(); ok {
				fmt.Fprintf(out, "%s %s %s (%s)\n", cli.BoldStyle.Render("Priority:"), cli.PriorityIcon, p.Goal.Name, cli.FormatStatus(p.Status))
			}
			fmt.Fprintln(out)
			writeGoalTable(out, summary.Goals, view)
			if summary.Orphans > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d contributions belong to no goal", summary.Orphans)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show goals with this status (active, paused, completed)")

	return cmd
}

func writeGoalTable(out io.Writer, goals []pacing.GoalProgress, view goalsView) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join([]string{
		cli.BoldStyle.Render("ID"),
		cli.BoldStyle.Render("NAME"),
		cli.BoldStyle.Render("STATUS"),
		cli.BoldStyle.Render("PACE"),
		cli.BoldStyle.Render("PROGRESS"),
		cli.BoldStyle.Render("SAVED"),
		cli.BoldStyle.Render("TARGET"),
		cli.BoldStyle.Render("DUE"),
	}, "\t"))

	for _, g := range goals {
		name := g.Goal.Name
		if g.Goal.IsPriority {
			name = cli.PriorityIcon + " " + name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			g.Goal.ID,
			name,
			string(g.Goal.Status),
			cli.FormatStatus(g.Status),
			format.Percent(g.Progress),
			format.GoalAmount(g.Saved, g.Goal, view.settings),
			format.GoalAmount(g.Goal.Target, g.Goal, view.settings),
			format.DueDate(g.Goal.TargetDate),
		)
	}

	_ = w.Flush()
}

func showGoalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <goal-id>",
		Short: "Show a goal's details and contributions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseGoalID(args[0])
			if err != nil {
				return err
			}

			view, err := loadView(ctx)
			if err != nil {
				return err
			}

			var progress *pacing.GoalProgress
			for i := range view.summary.Goals {
				if view.summary.Goals[i].Goal.ID == id {
					progress = &view.summary.Goals[i]
					break
				}
			}
			if progress == nil {
				return goalError(fmt.Errorf("goal #%d: %w", id, storage.ErrGoalNotFound))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderBox(progress.Goal.Name, goalDetails(*progress, view)))

			contributions := contributionsFor(view.snapshot.Contributions, id)
			if len(contributions) == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No contributions yet."))
				return nil
			}
			writeContributionTable(out, contributions, map[int64]model.Goal{id: progress.Goal}, view.settings)
			return nil
		},
	}
}

func goalDetails(g pacing.GoalProgress, view goalsView) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%-14s %s\n", label+":", value)
	}

	if g.Goal.Description != "" {
		line("Description", g.Goal.Description)
	}
	if g.Goal.Purpose != "" {
		line("Purpose", g.Goal.Purpose)
	}
	line("Type", string(g.Goal.Type))
	line("Status", string(g.Goal.Status))
	line("Frequency", format.Frequency(g.Goal.Frequency))
	line("Started", g.Goal.CreatedAt.Format("Jan 02, 2006"))
	line("Target date", format.DueDate(g.Goal.TargetDate))
	line("Target", format.GoalAmount(g.Goal.Target, g.Goal, view.settings))
	line("Saved", fmt.Sprintf("%s (%s)", format.GoalAmount(g.Saved, g.Goal, view.settings), format.Percent(g.Progress)))
	line("Expected", format.GoalAmount(g.Expected, g.Goal, view.settings))
	line("Pace", cli.FormatStatus(g.Status))
	if shortfall := g.Shortfall(); shortfall.IsPositive() && g.Status != pacing.StatusCompleted {
		line("Behind by", format.GoalAmount(shortfall, g.Goal, view.settings))
	}
	if g.Goal.IsPriority {
		line("Priority", cli.PriorityIcon)
	}

	return strings.TrimRight(b.String(), "\n")
}

func editGoalCmd() *cobra.Command {
	var flags goalFlags

	cmd := &cobra.Command{
		Use:   "edit <goal-id>",
		Short: "Change a goal's details",
		Long:  `Change the fields given as flags. Anything not given keeps its current value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseGoalID(args[0])
			if err != nil {
				return err
			}
			if !flags.anyChanged(cmd) {
				return common.NewUserError("nothing to change: pass at least one flag", nil)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			goal, err := store.GetGoal(ctx, id)
			if err != nil {
				return goalError(err)
			}
			if err := flags.apply(cmd, goal); err != nil {
				return err
			}
			if err := store.UpdateGoal(ctx, goal); err != nil {
				return goalError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated goal #%d %s", goal.ID, goal.Name)))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.name, "name", "", "New goal name")

	return cmd
}

func goalStatusCmd(use, short, verb string, status model.GoalStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <goal-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseGoalID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			goal, err := store.GetGoal(ctx, id)
			if err != nil {
				return goalError(err)
			}
			if err := setGoalStatus(ctx, store, id, status); err != nil {
				return goalError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s goal #%d %s", verb, goal.ID, goal.Name)))
			return nil
		},
	}
}

func setGoalStatus(ctx context.Context, store service.GoalStore, id int64, status model.GoalStatus) error {
	switch status {
	case model.GoalStatusPaused:
		return store.PauseGoal(ctx, id)
	case model.GoalStatusCompleted:
		return store.CompleteGoal(ctx, id)
	default:
		return store.ActivateGoal(ctx, id)
	}
}

// goalError turns storage failures into messages for the user.
func goalError(err error) error {
	switch {
	case errors.Is(err, storage.ErrGoalNotFound):
		return common.NewUserError("goal not found", err)
	case errors.Is(err, storage.ErrInvalidGoal):
		return common.NewUserError(err.Error(), err)
	default:
		return err
	}
}

// goalsView is everything the read-only commands render from.
type goalsView struct {
	snapshot service.Snapshot
	summary  pacing.Summary
	settings model.Settings
}

func loadView(ctx context.Context) (goalsView, error) {
	now, err := referenceTime()
	if err != nil {
		return goalsView{}, err
	}

	settingsStore, err := initSettings()
	if err != nil {
		return goalsView{}, err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return goalsView{}, err
	}
	defer func() { _ = store.Close() }()

	snapshot, err := store.Snapshot(ctx)
	if err != nil {
		return goalsView{}, fmt.Errorf("failed to load goals: %w", err)
	}

	return goalsView{
		snapshot: snapshot,
		summary:  pacing.Summarize(snapshot.Goals, snapshot.Contributions, now),
		settings: settingsStore.Load(),
	}, nil
}

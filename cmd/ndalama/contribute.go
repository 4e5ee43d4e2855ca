package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/ndalama/internal/cli"
	"github.com/Veraticus/ndalama/internal/common"
	"github.com/Veraticus/ndalama/internal/format"
	"github.com/Veraticus/ndalama/internal/model"
	"github.com/Veraticus/ndalama/internal/ofx"
	"github.com/Veraticus/ndalama/internal/storage"
	"github.com/spf13/cobra"
)

const manualSource = "manual"

func contributeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contribute",
		Aliases: []string{"contributions"},
		Short:   "Record and list contributions",
		Long: `Record money put toward a goal, by hand or from an OFX/QFX bank statement.

Contributions cannot be edited or deleted once recorded.`,
		Example: `  # Record a deposit
  ndalama contribute add 1 --amount 250 --description "Payday"

  # Import the deposits from a bank export
  ndalama contribute import ~/Downloads/savings.qfx --goal 1`,
	}

	cmd.AddCommand(addContributionCmd())
	cmd.AddCommand(listContributionsCmd())
	cmd.AddCommand(importContributionsCmd())
	cmd.AddCommand(statementAccountsCmd())

	return cmd
}

func addContributionCmd() *cobra.Command {
	var (
		amount      string
		description string
		kind        string
		date        string
	)

	cmd := &cobra.Command{
		Use:   "add <goal-id>",
		Short: "Record a contribution toward a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			goalID, err := parseGoalID(args[0])
			if err != nil {
				return err
			}
			value, err := parseAmount(amount, "amount")
			if err != nil {
				return err
			}

			when, err := referenceTime()
			if err != nil {
				return err
			}
			if date != "" {
				if when, err = parseDate(date); err != nil {
					return common.NewUserError(fmt.Sprintf("invalid date %q", date), err)
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			goal, err := store.GetGoal(ctx, goalID)
			if err != nil {
				return goalError(err)
			}

			c := model.Contribution{
				GoalID:      goal.ID,
				Amount:      value,
				Type:        kind,
				Description: description,
				Source:      manualSource,
				Date:        when,
			}
			if err := store.AddContribution(ctx, &c); err != nil {
				if errors.Is(err, storage.ErrInvalidContribution) {
					return common.NewUserError(err.Error(), err)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s to goal #%d %s",
				format.GoalAmount(c.Amount, *goal, settingsOrDefault()), goal.ID, goal.Name)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount contributed")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Note for this contribution")
	cmd.Flags().StringVarP(&kind, "type", "t", "deposit", "Contribution type")
	cmd.Flags().StringVar(&date, "date", "", "Date of the contribution (default: today)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func listContributionsCmd() *cobra.Command {
	var goalArg string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contributions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			view, err := loadView(ctx)
			if err != nil {
				return err
			}

			contributions := view.snapshot.Contributions
			if goalArg != "" {
				goalID, err := parseGoalID(goalArg)
				if err != nil {
					return err
				}
				contributions = contributionsFor(contributions, goalID)
			}

			out := cmd.OutOrStdout()
			if len(contributions) == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No contributions found."))
				return nil
			}

			goals := make(map[int64]model.Goal, len(view.snapshot.Goals))
			for _, g := range view.snapshot.Goals {
				goals[g.ID] = g
			}
			writeContributionTable(out, contributions, goals, view.settings)
			return nil
		},
	}

	cmd.Flags().StringVarP(&goalArg, "goal", "g", "", "Only show contributions to this goal")

	return cmd
}

// contributionsFor filters contributions to one goal, keeping their order.
func contributionsFor(contributions []model.Contribution, goalID int64) []model.Contribution {
	var out []model.Contribution
	for _, c := range contributions {
		if c.GoalID == goalID {
			out = append(out, c)
		}
	}
	return out
}

func writeContributionTable(out io.Writer, contributions []model.Contribution, goals map[int64]model.Goal, s model.Settings) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join([]string{
		cli.BoldStyle.Render("ID"),
		cli.BoldStyle.Render("DATE"),
		cli.BoldStyle.Render("GOAL"),
		cli.BoldStyle.Render("AMOUNT"),
		cli.BoldStyle.Render("TYPE"),
		cli.BoldStyle.Render("SOURCE"),
		cli.BoldStyle.Render("DESCRIPTION"),
	}, "\t"))

	for _, c := range contributions {
		goalName := cli.SubtleStyle.Render("(no goal)")
		amount := format.Amount(c.Amount, s)
		if g, ok := goals[c.GoalID]; ok {
			goalName = g.Name
			amount = format.GoalAmount(c.Amount, g, s)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			c.Date.Format(dateLayout),
			goalName,
			amount,
			c.Type,
			c.Source,
			c.Description,
		)
	}

	_ = w.Flush()
}

func importContributionsCmd() *cobra.Command {
	var (
		goalArg string
		account string
	)

	cmd := &cobra.Command{
		Use:   "import <file.ofx>",
		Short: "Import deposits from an OFX/QFX statement",
		Long: `Record every deposit in a bank statement as a contribution toward a goal.

Withdrawals are ignored. Deposits that were already imported are skipped, so
importing the same statement twice is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goalID, err := parseGoalID(goalArg)
			if err != nil {
				return err
			}
			path := args[0]

			return runReported(cmd.Context(), cmd.OutOrStdout(), "Import", func(ctx context.Context) (string, error) {
				return importStatement(ctx, cmd.ErrOrStderr(), path, goalID, account)
			})
		},
	}

	cmd.Flags().StringVarP(&goalArg, "goal", "g", "", "Goal to credit the deposits to")
	cmd.Flags().StringVar(&account, "account", "", "Only import this account from the statement")
	_ = cmd.MarkFlagRequired("goal")

	return cmd
}

func statementAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts <file.ofx>",
		Short: "List the bank accounts in an OFX/QFX statement",
		Long:  `List account ids that can be passed to 'contribute import --account'.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("cannot open %s", filepath.Base(args[0])), err)
			}
			defer func() { _ = f.Close() }()

			accounts, err := ofx.NewParser().GetAccounts(cmd.Context(), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(accounts) == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No bank accounts found."))
				return nil
			}
			for _, account := range accounts {
				fmt.Fprintln(out, account)
			}
			return nil
		},
	}
}

// importStatement stores the statement's new deposits in one transaction.
// Progress is drawn on progress.
func importStatement(ctx context.Context, progress io.Writer, path string, goalID int64, account string) (string, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	goal, err := store.GetGoal(ctx, goalID)
	if err != nil {
		return "", goalError(err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", common.NewUserError(fmt.Sprintf("cannot open %s", filepath.Base(path)), err)
	}
	defer func() { _ = f.Close() }()

	parsed, err := ofx.NewParser().ParseContributions(ctx, f, goal.ID, account)
	if err != nil {
		return "", err
	}
	if len(parsed) == 0 {
		return "", common.NewUserError(fmt.Sprintf("no deposits in %s", filepath.Base(path)), common.ErrNoContributions)
	}

	existing, err := store.ListContributions(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load contributions: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		if strings.HasPrefix(c.Source, ofx.SourcePrefix) {
			seen[c.Source] = struct{}{}
		}
	}

	bar := cli.NewProgressBar(progress, len(parsed), "Checking deposits")
	fresh := make([]model.Contribution, 0, len(parsed))
	for _, c := range parsed {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if _, dup := seen[c.Source]; !dup {
			seen[c.Source] = struct{}{}
			fresh = append(fresh, c)
		}
		_ = bar.Add(1)
	}

	skipped := len(parsed) - len(fresh)
	if len(fresh) == 0 {
		return fmt.Sprintf("Nothing new in %s (%d deposits already imported)", filepath.Base(path), skipped), nil
	}

	if err := store.AddContributions(ctx, fresh); err != nil {
		return "", fmt.Errorf("failed to save contributions: %w", err)
	}

	return fmt.Sprintf("Imported %d contributions to goal #%d %s (%d already imported)",
		len(fresh), goal.ID, goal.Name, skipped), nil
}

// settingsOrDefault loads display settings, falling back to the defaults
// when configuration is unusable.
func settingsOrDefault() model.Settings {
	store, err := initSettings()
	if err != nil {
		return model.DefaultSettings()
	}
	return store.Load()
}

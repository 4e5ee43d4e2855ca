package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/ndalama/internal/cli"
	"github.com/Veraticus/ndalama/internal/common"
	"github.com/Veraticus/ndalama/internal/format"
	"github.com/Veraticus/ndalama/internal/model"
	"github.com/Veraticus/ndalama/internal/settings"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var sampleAmount = decimal.RequireFromString("1234.56")

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and change display settings",
		Example: `  ndalama settings currency EUR
  ndalama settings format dot
  ndalama settings biometrics off`,
	}

	cmd.AddCommand(showSettingsCmd())
	cmd.AddCommand(currencyCmd())
	cmd.AddCommand(numberFormatCmd())
	cmd.AddCommand(biometricsCmd())

	return cmd
}

func showSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initSettings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeSettings(out, store.Load())
			fmt.Fprintf(out, "%-14s %s\n", "File:", cli.SubtleStyle.Render(store.Path()))
			return nil
		},
	}
}

func writeSettings(w io.Writer, s model.Settings) {
	biometrics := "off"
	if s.BiometricsEnabled {
		biometrics = "on"
	}
	fmt.Fprintf(w, "%-14s %s\n", "Currency:", s.Currency)
	fmt.Fprintf(w, "%-14s %s\n", "Number format:", format.Number(sampleAmount, s.NumberFormat))
	fmt.Fprintf(w, "%-14s %s\n", "Biometrics:", biometrics)
}

func currencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currency <code>",
		Short: "Set the currency shown before amounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateSettings(cmd, func(store *settings.Store) (model.Settings, error) {
				return store.SetCurrency(args[0])
			}, func(s model.Settings) string {
				return "Currency set to " + s.Currency
			})
		},
	}
}

func numberFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <comma|dot>",
		Short: "Set digit grouping: comma (1,234.56) or dot (1.234,56)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nf, err := parseNumberFormat(args[0])
			if err != nil {
				return err
			}
			return updateSettings(cmd, func(store *settings.Store) (model.Settings, error) {
				return store.SetNumberFormat(nf)
			}, func(s model.Settings) string {
				return "Amounts will look like " + format.Number(sampleAmount, s.NumberFormat)
			})
		},
	}
}

func parseNumberFormat(raw string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "comma", "0", "1,234.56":
		return model.NumberFormatComma, nil
	case "dot", "1", "1.234,56":
		return model.NumberFormatDot, nil
	}
	return 0, common.NewUserError(fmt.Sprintf("unknown number format %q (use comma or dot)", raw), settings.ErrNumberFormat)
}

func biometricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "biometrics <on|off>",
		Short: "Turn the biometric lock on or off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseSwitch(args[0])
			if err != nil {
				return err
			}
			return updateSettings(cmd, func(store *settings.Store) (model.Settings, error) {
				return store.SetBiometrics(enabled)
			}, func(s model.Settings) string {
				if s.BiometricsEnabled {
					return "Biometrics enabled"
				}
				return "Biometrics disabled"
			})
		},
	}
}

func parseSwitch(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes", "enable", "enabled":
		return true, nil
	case "off", "no", "disable", "disabled":
		return false, nil
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false, common.NewUserError(fmt.Sprintf("expected on or off, got %q", raw), err)
	}
	return enabled, nil
}

func updateSettings(cmd *cobra.Command, change func(*settings.Store) (model.Settings, error), describe func(model.Settings) string) error {
	store, err := initSettings()
	if err != nil {
		return err
	}

	updated, err := change(store)
	if err != nil {
		if errors.Is(err, settings.ErrCurrency) || errors.Is(err, settings.ErrNumberFormat) {
			return common.NewUserError(err.Error(), err)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(describe(updated)))
	return nil
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/tidal/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive first-run configuration",
	Long:  `Walk through the compositor settings and write the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg := config.Get()

		cursorTheme := cfg.Cursor.Theme
		cursorSize := strconv.Itoa(cfg.Cursor.Size)
		timeout := strconv.Itoa(cfg.Compositor.TransactionTimeoutMS)
		borderWidth := strconv.Itoa(cfg.Compositor.BorderWidth)
		logLevel := cfg.Logging.LogLevel
		if logLevel == "" {
			logLevel = "info"
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Cursor theme").
					Description("XCURSOR_THEME exported to clients; empty for the system default").
					Value(&cursorTheme),
				huh.NewSelect[string]().
					Title("Cursor size").
					Options(
						huh.NewOption("24 (default)", "24"),
						huh.NewOption("32", "32"),
						huh.NewOption("48", "48"),
					).
					Value(&cursorSize),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Transaction timeout (ms)").
					Description("How long a layout change waits for clients before committing anyway").
					Value(&timeout).
					Validate(validatePositiveInt),
				huh.NewInput().
					Title("Border width (px)").
					Value(&borderWidth).
					Validate(validatePositiveInt),
				huh.NewSelect[string]().
					Title("Log level").
					Options(
						huh.NewOption("debug", "debug"),
						huh.NewOption("info", "info"),
						huh.NewOption("warn", "warn"),
						huh.NewOption("error", "error"),
					).
					Value(&logLevel),
			),
		)

		if err := form.Run(); err != nil {
			return err
		}

		viper.Set("cursor.theme", cursorTheme)
		viper.Set("cursor.size", mustAtoi(cursorSize))
		viper.Set("compositor.transaction_timeout_ms", mustAtoi(timeout))
		viper.Set("compositor.border_width", mustAtoi(borderWidth))
		viper.Set("logging.log_level", logLevel)

		if err := config.Save(); err != nil {
			return err
		}
		fmt.Printf("Configuration written to %s\n", config.GetConfigPath())
		return nil
	},
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/tidal/internal/config"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string

	rootCmd = &cobra.Command{
		Use:   "tidal",
		Short: "Tidal - dynamic tiling Wayland compositor",
		Long: `Tidal is a dynamic tiling compositor for the Wayland protocol.
Layout policy lives in a separate window manager process that talks to the
compositor over a private protocol; the compositor core coordinates atomic
multi-window reconfiguration, input dispatch and session locking.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				config.SetConfigPath(configPath)
			}
			return nil
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(injectCmd)
}

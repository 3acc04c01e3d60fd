package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/bnema/tidal/internal/ipc"
)

var (
	dumpPath   string
	dumpSocket string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the compositor state as JSON",
	Long: `Fetch the full state snapshot of a running compositor. With --path a
gjson expression selects part of the document, e.g.

  tidal dump --path windows.#.title
  tidal dump --path 'seats.0.cursor_mode'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ipc.Connect(dumpSocket)
		if err != nil {
			return err
		}
		defer client.Close()

		data, err := client.Dump()
		if err != nil {
			return fmt.Errorf("failed to dump state: %w", err)
		}

		if dumpPath != "" {
			result := gjson.GetBytes(data, dumpPath)
			if !result.Exists() {
				return fmt.Errorf("path %q matched nothing", dumpPath)
			}
			fmt.Println(result.String())
			return nil
		}

		fmt.Println(gjson.GetBytes(data, "@pretty").String())
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpPath, "path", "p", "", "gjson path to extract")
	dumpCmd.Flags().StringVar(&dumpSocket, "socket", "", "control socket path override")
}

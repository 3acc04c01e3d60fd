package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/tidal/internal/ipc"
	"github.com/bnema/tidal/internal/ui"
)

var (
	statusWatch  bool
	statusSocket string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the status of a running compositor",
	Long:  `Query the control socket of a running compositor for its window, output and seat state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statusWatch {
			p := tea.NewProgram(ui.NewStatusModel(statusSocket))
			_, err := p.Run()
			return err
		}

		client, err := ipc.Connect(statusSocket)
		if err != nil {
			fmt.Println("Compositor is not running")
			return nil
		}
		defer client.Close()

		status, err := client.Status()
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		var out strings.Builder
		out.WriteString(ui.HeaderStyle.Render("TIDAL COMPOSITOR"))
		out.WriteString("\n")
		fmt.Fprintf(&out, "%s compositor\n", ui.StatusDot(status.Running))
		fmt.Fprintf(&out, "%s window manager\n", ui.StatusDot(status.WMConnected))
		fmt.Fprintf(&out, "\n%s %d\n", ui.SubheaderStyle.Render("windows:"), status.Windows)
		fmt.Fprintf(&out, "%s %d\n", ui.SubheaderStyle.Render("outputs:"), status.Outputs)
		fmt.Fprintf(&out, "%s %d\n", ui.SubheaderStyle.Render("seats:"), status.Seats)
		if status.Locked {
			out.WriteString(ui.WarningStyle.Render("session locked"))
			out.WriteString("\n")
		}
		if status.WaylandDisplay != "" {
			fmt.Fprintf(&out, "%s %s\n", ui.SubtleStyle.Render("display:"), status.WaylandDisplay)
		}
		fmt.Println(ui.BoxStyle.Render(out.String()))
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "live view, refreshed every second")
	statusCmd.Flags().StringVar(&statusSocket, "socket", "", "control socket path override")
}

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ThomasT75/uinput"
	"github.com/spf13/cobra"
)

// inject is a development tool: it creates virtual uinput devices and
// synthesizes input so a running compositor can be exercised without
// touching real hardware. Requires access to /dev/uinput.

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Inject synthetic input events (development tool)",
}

var injectMoveCmd = &cobra.Command{
	Use:   "move <dx> <dy>",
	Short: "Inject relative pointer motion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dx, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid dx: %w", err)
		}
		dy, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid dy: %w", err)
		}

		mouse, err := uinput.CreateMouse("/dev/uinput", []byte("Tidal Virtual Mouse"))
		if err != nil {
			return fmt.Errorf("failed to create virtual mouse (try adding yourself to the input group): %w", err)
		}
		defer mouse.Close()

		// Give the compositor a moment to pick the device up.
		time.Sleep(200 * time.Millisecond)

		if dx > 0 {
			err = mouse.MoveRight(int32(dx))
		} else if dx < 0 {
			err = mouse.MoveLeft(int32(-dx))
		}
		if err != nil {
			return fmt.Errorf("failed to inject horizontal motion: %w", err)
		}
		if dy > 0 {
			err = mouse.MoveDown(int32(dy))
		} else if dy < 0 {
			err = mouse.MoveUp(int32(-dy))
		}
		if err != nil {
			return fmt.Errorf("failed to inject vertical motion: %w", err)
		}
		return nil
	},
}

var injectClickCmd = &cobra.Command{
	Use:   "click [left|right]",
	Short: "Inject a pointer button click",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		button := "left"
		if len(args) == 1 {
			button = args[0]
		}

		mouse, err := uinput.CreateMouse("/dev/uinput", []byte("Tidal Virtual Mouse"))
		if err != nil {
			return fmt.Errorf("failed to create virtual mouse: %w", err)
		}
		defer mouse.Close()

		time.Sleep(200 * time.Millisecond)

		switch button {
		case "left":
			return mouse.LeftClick()
		case "right":
			return mouse.RightClick()
		default:
			return fmt.Errorf("unknown button %q", button)
		}
	},
}

var injectKeyCmd = &cobra.Command{
	Use:   "key <keycode>",
	Short: "Inject a key press and release by linux keycode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid keycode: %w", err)
		}

		kb, err := uinput.CreateKeyboard("/dev/uinput", []byte("Tidal Virtual Keyboard"))
		if err != nil {
			return fmt.Errorf("failed to create virtual keyboard: %w", err)
		}
		defer kb.Close()

		time.Sleep(200 * time.Millisecond)

		return kb.KeyPress(code)
	},
}

func init() {
	injectCmd.AddCommand(injectMoveCmd)
	injectCmd.AddCommand(injectClickCmd)
	injectCmd.AddCommand(injectKeyCmd)
}

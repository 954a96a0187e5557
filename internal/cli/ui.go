package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/taskflow/internal/tui"
)

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			a.interactive.Store(true)
			m, err := tui.Run(cmd.Context(), a.board, a.toasts)
			a.interactive.Store(false)
			if err != nil {
				return fmt.Errorf("error running board: %w", err)
			}
			if m.LoggedOut() || a.expired.Load() {
				fmt.Fprintln(a.errOut, ErrSessionExpired.Error())
				return ErrSessionExpired
			}
			return nil
		},
	}
}

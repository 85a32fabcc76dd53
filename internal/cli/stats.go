package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSpinCmd() *cobra.Command {
	var coins, win int64

	cmd := &cobra.Command{
		Use:   "spin",
		Short: "Report a spin outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.SessionID == "" {
				return fmt.Errorf("no session: login or start a guest session first")
			}

			req := map[string]any{
				"session_id": cfg.SessionID,
				"coins":      coins,
			}
			if win > 0 {
				req["win_amount"] = win
			}
			var result SpinResult

			if err := client.Post("/api/update-stats", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Recorded spin, balance now %d", coins))
			return nil
		},
	}

	cmd.Flags().Int64Var(&coins, "coins", 0, "Coin balance after the spin (required)")
	cmd.Flags().Int64Var(&win, "win", 0, "Amount won on this spin, if any")
	_ = cmd.MarkFlagRequired("coins")

	return cmd
}

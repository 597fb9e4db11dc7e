package workflowcmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

var errTransitionDenied = errors.New("transition not allowed")

func (a *app) checkTransitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-transition FROM TO",
		Short: "Report whether a document may move from one status to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := a.rules()
			if err != nil {
				return err
			}
			g := rules.Graph()
			from := workflow.OrDraft(workflow.Status(args[0]))
			to := workflow.Status(args[1])
			if !g.Known(to) {
				return fmt.Errorf("unknown status %q", to)
			}
			base := workflow.BaseStatus(from)
			if g.IsValidTransition(base, workflow.BaseStatus(to)) {
				fmt.Fprintf(cmd.OutOrStdout(), "allowed: %s -> %s\n", from, to)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "denied: %s -> %s\n", from, to)
			if next := g.Next(base); len(next) > 0 {
				a.logger.Debug("static targets", "from", base, "targets", next)
			}
			return errTransitionDenied
		},
	}
}

package workflowcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	documentsgorm "github.com/shehrozeikram/ERP-sub009/internal/repo/gorm/documents"
	"github.com/shehrozeikram/ERP-sub009/internal/workflowconf"
)

func (a *app) validateRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-rules FILE",
		Short: "Validate a workflow rules file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := workflowconf.Load(args[0])
			if err != nil {
				return err
			}
			idc := rules.IdentityConfig()
			mods := rules.Descriptors(documentsgorm.DefaultDescriptors())
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d modules, %d email and %d role assignments, %d elevated roles)\n",
				args[0], len(mods), len(idc.Emails), len(idc.Roles), len(idc.Elevated))
			return nil
		},
	}
}

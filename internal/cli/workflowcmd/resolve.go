package workflowcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shehrozeikram/ERP-sub009/internal/identity"
)

func (a *app) resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the workflow status a user reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := a.rules()
			if err != nil {
				return err
			}
			res := identity.NewResolver(rules.IdentityConfig())
			asg := res.Resolve(identity.Caller{Email: a.v.GetString("email"), Role: a.v.GetString("role")})
			out := cmd.OutOrStdout()
			switch {
			case asg.Assigned:
				fmt.Fprintln(out, asg.Status)
			case asg.Elevated:
				fmt.Fprintln(out, "unrestricted")
			default:
				fmt.Fprintln(out, "none")
			}
			return nil
		},
	}
	cmd.Flags().String("email", "", "user email")
	cmd.Flags().String("role", "", "user role")
	return cmd
}

// Package workflowcmd holds the workflowctl operator commands.
package workflowcmd

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shehrozeikram/ERP-sub009/internal/cli/common"
	"github.com/shehrozeikram/ERP-sub009/internal/workflowconf"
)

type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

// New returns the workflowctl root command.
func New() *cobra.Command {
	a := &app{v: viper.New(), logger: slog.Default()}
	var cfgFile, profile string
	root := &cobra.Command{
		Use:           "workflowctl",
		Short:         "Inspect and operate the ERP document workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.NewViper(cfgFile)
			if err != nil {
				return err
			}
			if v, err = common.ApplyProfile(v, profile); err != nil {
				return err
			}
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := common.ValidateLogConfig(v); err != nil {
				return err
			}
			a.v = v
			a.logger = common.NewLogger(common.LogOptionsFrom(v), cmd.ErrOrStderr())
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml)")
	pf.StringVar(&profile, "profile", "", "profile overlay from the config file")
	pf.String("rules", "", "workflow rules file; built-in rules when empty")
	pf.String("log.level", "info", "log level: debug|info|warn|error")
	pf.String("log.format", "console", "log format: console|json")
	pf.String("log.file", "", "rotate logs into this file")

	root.AddCommand(
		a.checkTransitionCmd(),
		a.resolveCmd(),
		a.migrateCmd(),
		a.tasksCmd(),
		a.validateRulesCmd(),
		a.verifyAuditCmd(),
	)
	return root
}

// rules loads the configured rules file or returns the built-in rules.
func (a *app) rules() (*workflowconf.Rules, error) {
	path := strings.TrimSpace(a.v.GetString("rules"))
	if path == "" {
		return &workflowconf.Rules{}, nil
	}
	return workflowconf.Load(path)
}

var errDSNRequired = errors.New("--dsn (or ERPFLOW_DSN) is required")

func (a *app) dsn() (string, error) {
	dsn := strings.TrimSpace(a.v.GetString("dsn"))
	if dsn == "" {
		return "", errDSNRequired
	}
	return dsn, nil
}

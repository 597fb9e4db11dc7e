package workflowcmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shehrozeikram/ERP-sub009/internal/db"
	"github.com/shehrozeikram/ERP-sub009/internal/identity"
	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	documentsgorm "github.com/shehrozeikram/ERP-sub009/internal/repo/gorm/documents"
	usersgorm "github.com/shehrozeikram/ERP-sub009/internal/repo/gorm/users"
	"github.com/shehrozeikram/ERP-sub009/internal/tasks"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
	"github.com/shehrozeikram/ERP-sub009/internal/workflowconf"
)

func (a *app) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the worklist of a user across every module",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := a.dsn()
			if err != nil {
				return err
			}
			rules, err := a.rules()
			if err != nil {
				return err
			}
			gdb, err := db.Open(dsn)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			reg, err := buildRegistry(gdb, rules)
			if err != nil {
				return err
			}
			agg := tasks.NewAggregator(reg, identity.NewResolver(rules.IdentityConfig()),
				tasks.WithFetchLimit(a.v.GetInt("limit")))
			caller := identity.Caller{
				ID:    a.v.GetString("id"),
				Email: a.v.GetString("email"),
				Role:  a.v.GetString("role"),
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.v.GetDuration("timeout"))
			defer cancel()
			opts := tasks.Options{StatusFilter: workflow.Status(a.v.GetString("status"))}
			list, err := agg.ListTasks(ctx, caller, opts)
			if err != nil {
				return err
			}
			for _, m := range list.FailedModules {
				a.logger.Warn("module skipped", "module", m)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTasks(list))
			if a.v.GetBool("stats") {
				st, err := agg.Stats(ctx, caller, opts)
				if err != nil {
					return err
				}
				writeStats(cmd.OutOrStdout(), st)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.String("dsn", "", "database DSN")
	f.String("id", "", "user id")
	f.String("email", "", "user email")
	f.String("role", "", "user role")
	f.String("status", "", "status filter for elevated roles")
	f.Int("limit", tasks.DefaultFetchLimit, "documents fetched per module")
	f.Bool("stats", false, "also print the dashboard counters")
	f.Duration("timeout", 30*time.Second, "overall query timeout")
	return cmd
}

func buildRegistry(gdb *gorm.DB, rules *workflowconf.Rules) (*modules.Registry, error) {
	users := usersgorm.New(gdb)
	descs := rules.Descriptors(documentsgorm.DefaultDescriptors())
	mods := make([]modules.Module, 0, len(descs))
	for _, d := range descs {
		acc, err := documentsgorm.New(gdb, d, users)
		if err != nil {
			return nil, err
		}
		mods = append(mods, modules.Module{Descriptor: d, Accessor: acc})
	}
	return modules.NewRegistry(mods...)
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}

func renderTasks(list *tasks.TaskList) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Module", "ID", "Title", "Workflow Status", "Amount", "Updated", "Processed"})
	for _, t := range list.Tasks {
		processed := ""
		if t.UserHasProcessed {
			processed = "yes"
		}
		tw.AppendRow(table.Row{
			t.SubmoduleName, t.ID, cell(t.Title), string(t.WorkflowStatus),
			cell(t.Amount), t.UpdatedAt.Format(time.RFC3339), processed,
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "Total", list.TotalTasks})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func writeStats(w io.Writer, st *tasks.Stats) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Counter", "Value"})
	tw.AppendRows([]table.Row{
		{"total", st.TotalTasks},
		{"pending", st.PendingTasks},
		{"recent (7d)", st.RecentTasks},
	})
	for mod, n := range st.BySubmodule {
		tw.AppendRow(table.Row{"module " + mod, n})
	}
	tw.SortBy([]table.SortBy{{Number: 1, Mode: table.Asc}})
	tw.Render()
}

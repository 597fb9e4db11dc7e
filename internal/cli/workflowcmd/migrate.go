package workflowcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shehrozeikram/ERP-sub009/internal/db"
	documentsgorm "github.com/shehrozeikram/ERP-sub009/internal/repo/gorm/documents"
	usersgorm "github.com/shehrozeikram/ERP-sub009/internal/repo/gorm/users"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the document and user tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := a.dsn()
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
			if err := documentsgorm.AutoMigrate(gdb); err != nil {
				return fmt.Errorf("migrate documents: %w", err)
			}
			if err := usersgorm.AutoMigrate(gdb); err != nil {
				return fmt.Errorf("migrate users: %w", err)
			}
			a.logger.Info("migrated", "driver", db.Driver(dsn))
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s database\n", db.Driver(dsn))
			return nil
		},
	}
	cmd.Flags().String("dsn", "", "database DSN (postgres://, mysql://, sqlserver://, sqlite path)")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/div0rce/gradpath/pkg/cli"
	"github.com/div0rce/gradpath/pkg/dsl/legacy"
	"github.com/div0rce/gradpath/pkg/requirements"
)

var migrateFlags struct {
	dir   string
	apply bool
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert legacy shorthand rules to the v2 shape",
	Long: `Scan requirement-set files for legacy shorthand rules and convert them.

Without --apply the command only reports what would change. With --apply
converted rules are written back to their files. Legacy rules that still
contain unsupported shapes are left untouched and counted as unsupported.

The report is JSON with stable field order.

Examples:
  # Dry run
  gradpath migrate --dir requirements/

  # Rewrite files
  gradpath migrate --dir requirements/ --apply`,
	RunE: migrateRequirements,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().StringVarP(&migrateFlags.dir, "dir", "d", "", "requirements directory (default from config)")
	migrateCmd.Flags().BoolVar(&migrateFlags.apply, "apply", false, "write converted rules back to their files")
}

func migrateRequirements(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	dir := migrateFlags.dir
	if dir == "" {
		dir = a.config.Requirements.Dir
	}

	loader := requirements.NewLoader(a.loaderConfig(false, false), a.logger)
	sets, err := loader.LoadDir(dir)
	if err != nil {
		return cli.NewCommandError("migrate", err)
	}

	total := &legacy.MigrationReport{Apply: migrateFlags.apply}
	for _, set := range sets {
		report := legacy.Migrate(set.Rules(), migrateFlags.apply)
		total.Scanned += report.Scanned
		total.AlreadyV2 += report.AlreadyV2
		total.Converted += report.Converted
		total.Unsupported += report.Unsupported

		if !migrateFlags.apply || len(report.Rules) == 0 {
			continue
		}
		set.ApplyMigration(report)
		if err := requirements.WriteFile(set.Source, set); err != nil {
			return cli.NewCommandError("migrate", fmt.Errorf("write %s: %w", set.Source, err))
		}
		a.logger.Info("Requirement set migrated", "set", set.ID, "file", set.Source, "converted", len(report.Rules))
	}

	return cli.NewFormatter(cli.FormatJSON).FormatTo(outWriter(cmd), total)
}

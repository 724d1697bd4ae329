package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema and seed default site settings",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) {
	defer StopApp()

	logrus.Info("[MIGRATION] Preparing schema...")
	if err := initSchema(appCtx); err != nil {
		logrus.Fatalf("[MIGRATION] schema failed: %v", err)
	}

	seeded, err := settingsSvc.SeedDefaults(appCtx)
	if err != nil {
		logrus.Fatalf("[MIGRATION] seeding settings failed: %v", err)
	}
	if seeded > 0 {
		logrus.Infof("[MIGRATION] Seeded %d default settings.", seeded)
	} else {
		logrus.Info("[MIGRATION] Settings already present.")
	}
}

package cmd

import (
	"academy/config"
	"academy/logger"
	"academy/seed"
	"academy/services/membership"
	"academy/services/school"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create default data",
}

var seedSchoolCmd = &cobra.Command{
	Use:   "school",
	Short: "Create the school from SCHOOL_* settings if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer syncLogger()
		db, err := connect()
		if err != nil {
			return err
		}
		if config.AppConfig.School.Name == "" {
			return errors.New("SCHOOL_NAME is not set")
		}
		created, err := school.NewRegistry(db, logger.Log).Seed(cmd.Context(), config.AppConfig.School)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintln(cmd.OutOrStdout(), "School created.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "School already exists; nothing to do.")
		}
		return nil
	},
}

var seedPlansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Create the default membership plans if none exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer syncLogger()
		db, err := connect()
		if err != nil {
			return err
		}
		n, err := seed.Plans(cmd.Context(), db, membership.NewPlanStore(db, logger.Log), logger.Log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %d membership plan(s).\n", n)
		return nil
	},
}

var seedExamCmd = &cobra.Command{
	Use:   "exam2",
	Short: "Create or refresh the free practice exam course",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer syncLogger()
		db, err := connect()
		if err != nil {
			return err
		}
		created, err := seed.PracticeExam(cmd.Context(), db, logger.Log)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintln(cmd.OutOrStdout(), "Practice exam course created.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Practice exam course refreshed.")
		}
		return nil
	},
}

func init() {
	seedCmd.AddCommand(seedSchoolCmd)
	seedCmd.AddCommand(seedPlansCmd)
	seedCmd.AddCommand(seedExamCmd)
}

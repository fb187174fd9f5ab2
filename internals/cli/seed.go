package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"schoolku_backend/internals/seeds/students"
)

var seedCmd = &cobra.Command{
	Use:   "seed-students",
	Short: "Load a student roster JSON file into the students table",
	Example: `  feesctl seed-students --file roster.json`,
	RunE:    runSeedStudents,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringP("file", "f", "", "Roster JSON file (array of students)")
	_ = seedCmd.MarkFlagRequired("file")
}

func runSeedStudents(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	db, closeFn, err := openDB()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	n, err := students.SeedStudentsFromJSON(ctx, db, file)
	if err != nil {
		return err
	}
	cmd.Printf("%d student(s) inserted\n", n)
	return nil
}

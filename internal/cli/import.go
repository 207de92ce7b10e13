package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/questline-app/questline/internal/importer"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <catalog.json>",
	Short: "Import a curriculum catalog from a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := importer.Import(db, f)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d courses, %d weeks, %d tasks, %d quests, %d badges, %d achievements, %d quizzes (%d questions)\n",
		res.Courses, res.Weeks, res.Tasks, res.Quests, res.Badges, res.Achievements, res.Quizzes, res.Questions)
	return nil
}

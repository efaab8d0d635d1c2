package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"docvision/internal/task"
	"docvision/internal/validator"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List task kinds and schema presets",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println("Tasks:")
		for _, k := range task.Kinds() {
			cmd.Printf("  %s\n", k)
		}
		cmd.Printf("Presets: %s\n", strings.Join(validator.PresetNames(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/core"
)

var deleteCmd = &cobra.Command{
	Use:               "delete <n>",
	Aliases:           []string{"rm"},
	Short:             "Delete a task without archiving it",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskPositions,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		idx, err := core.ParseSelection(args[0], len(TaskMgr.Tasks()))
		if err != nil {
			return err
		}
		removed, err := TaskMgr.Delete(idx)
		if err != nil {
			return err
		}

		fmt.Printf("Task Removed: %s\n", removed.Name)
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:               "done <n>",
	Short:             "Mark a task as complete and archive it",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskPositions,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		idx, err := core.ParseSelection(args[0], len(TaskMgr.Tasks()))
		if err != nil {
			return err
		}
		task, err := TaskMgr.MarkComplete(idx)
		if err != nil {
			return err
		}

		fmt.Printf("Task '%s' marked as Done and archived.\n", task.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(doneCmd)
}

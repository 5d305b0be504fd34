package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/core"
)

var (
	listIncomplete bool
	listCompleted  bool
	listPositional bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List active tasks sorted by due date (undated last), then by urgency.

Use --positional to list tasks in stored order; those numbers are the ones
edit, delete and done accept. Use --completed to list the archive.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		if listCompleted {
			entries, err := TaskMgr.Archived()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("You have no completed tasks.")
				return nil
			}
			renderArchived(os.Stdout, entries)
			return nil
		}

		tasks := TaskMgr.Sorted()
		if listPositional {
			tasks = TaskMgr.Tasks()
		}
		if listIncomplete {
			tasks = core.FilterIncomplete(tasks)
		}
		if len(tasks) == 0 {
			fmt.Println("you have no pending tasks :)")
			return nil
		}
		renderTasks(os.Stdout, core.View(tasks, TaskMgr.Now()))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listIncomplete, "incomplete", false, "Only list tasks that are not done")
	listCmd.Flags().BoolVar(&listCompleted, "completed", false, "List archived (completed) tasks")
	listCmd.Flags().BoolVar(&listPositional, "positional", false, "List in stored order instead of sorted")
	listCmd.MarkFlagsMutuallyExclusive("incomplete", "completed")
	listCmd.MarkFlagsMutuallyExclusive("positional", "completed")
	rootCmd.AddCommand(listCmd)
}

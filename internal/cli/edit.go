package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

var (
	editName   string
	editStatus string
	editDue    string
)

var editCmd = &cobra.Command{
	Use:   "edit <n>",
	Short: "Edit a task",
	Long: `Edit the task at position n (1-based, as shown by list --positional).

Only the given flags change. Setting the status to Done completes the task
and moves it to the archive.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskPositions,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		if editName == "" && editStatus == "" && editDue == "" {
			return fmt.Errorf("nothing to change: pass --name, --status or --due")
		}

		idx, err := core.ParseSelection(args[0], len(TaskMgr.Tasks()))
		if err != nil {
			return err
		}

		var status models.Status
		if editStatus != "" {
			if status, err = parseStatusFlag(editStatus, true); err != nil {
				return err
			}
		}

		task, err := TaskMgr.Edit(idx, core.TaskUpdate{Name: editName, Status: status, DueDate: editDue})
		if err != nil {
			return err
		}

		if task.Status.IsDone() {
			fmt.Printf("Completed and archived: %s\n", task.Name)
			return nil
		}
		fmt.Printf("Updated: %s - %s (Due: %s)\n", task.Name, task.Status, task.DueDate)
		return nil
	},
}

func init() {
	editCmd.Flags().StringVarP(&editName, "name", "n", "", "New task name")
	editCmd.Flags().StringVarP(&editStatus, "status", "s", "", "New status: urgent, semi-urgent, non-urgent or Done")
	editCmd.Flags().StringVarP(&editDue, "due", "d", "", "New due date (DD-MM-YYYY)")
	_ = editCmd.RegisterFlagCompletionFunc("status", completeStatuses(true))
	rootCmd.AddCommand(editCmd)
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

var (
	addStatus string
	addDue    string
)

var addCmd = &cobra.Command{
	Use:   "add <name...>",
	Short: "Add a task",
	Long: `Add a task to the active list. The name is every argument joined by spaces.

The status defaults to defaults.status in .todoconfig (non-urgent unless
configured). The due date must be DD-MM-YYYY; omit it for no due date.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		status := models.StatusNonUrgent
		if Config != nil && Config.DefaultStatus != "" {
			status = Config.DefaultStatus
		}
		if addStatus != "" {
			s, err := parseStatusFlag(addStatus, false)
			if err != nil {
				return err
			}
			status = s
		}

		task, err := TaskMgr.Add(models.Task{
			Name:    strings.Join(args, " "),
			Status:  status,
			DueDate: addDue,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Added: %s - %s (Due: %s)\n", task.Name, task.Status, task.DueDate)
		return nil
	},
}

// parseStatusFlag accepts the three urgencies in any case, and Done when
// allowDone is set.
func parseStatusFlag(s string, allowDone bool) (models.Status, error) {
	status := models.Status(strings.TrimSpace(s))
	switch status.Kind() {
	case models.KindUrgent, models.KindSemiUrgent, models.KindNonUrgent:
		return status, nil
	case models.KindDone:
		if allowDone {
			return models.StatusDone, nil
		}
	}
	valid := "urgent, semi-urgent, non-urgent"
	if allowDone {
		valid += ", Done"
	}
	return "", fmt.Errorf("%w: status %q must be one of: %s", core.ErrInvalidInput, s, valid)
}

func init() {
	addCmd.Flags().StringVarP(&addStatus, "status", "s", "", "Urgency: urgent, semi-urgent or non-urgent")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due date (DD-MM-YYYY)")
	_ = addCmd.RegisterFlagCompletionFunc("status", completeStatuses(false))
	rootCmd.AddCommand(addCmd)
}

package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/pkg/models"
)

// completeStatuses returns a completion function for status values.
func completeStatuses(includeDone bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		statuses := []models.Status{models.StatusUrgent, models.StatusSemiUrgent, models.StatusNonUrgent}
		if includeDone {
			statuses = append(statuses, models.StatusDone)
		}

		var out []string
		for _, s := range statuses {
			if strings.HasPrefix(strings.ToLower(string(s)), strings.ToLower(toComplete)) {
				out = append(out, string(s))
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeTaskPositions lists the 1-based positions of active tasks with
// the task name as description.
func completeTaskPositions(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if TaskMgr == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var out []string
	for i, t := range TaskMgr.Tasks() {
		pos := strconv.Itoa(i + 1)
		if toComplete == "" || strings.HasPrefix(pos, toComplete) {
			out = append(out, pos+"\t"+t.Name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

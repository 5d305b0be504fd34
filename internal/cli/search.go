package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/core"
)

var searchCmd = &cobra.Command{
	Use:   "search <term...>",
	Short: "Find tasks by name",
	Long:  `Find active tasks whose name contains the term, ignoring case. Matches are sorted like list.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		term := strings.Join(args, " ")
		matches := TaskMgr.Search(term)
		if len(matches) == 0 {
			fmt.Println("No tasks found matching your search.")
			return nil
		}

		fmt.Printf("Tasks matching '%s':\n", strings.ToLower(term))
		renderTasks(os.Stdout, core.View(matches, TaskMgr.Now()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

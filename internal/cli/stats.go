package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statsFormat string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	Long: `Show counts of active, completed, urgent and overdue tasks and the
all-time completion rate. The rate is omitted when there are no tasks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		stats, err := TaskMgr.Statistics()
		if err != nil {
			return err
		}

		switch statsFormat {
		case "json":
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting statistics as JSON: %w", err)
			}
			fmt.Println(string(data))
		case "yaml":
			data, err := yaml.Marshal(stats)
			if err != nil {
				return fmt.Errorf("formatting statistics as YAML: %w", err)
			}
			fmt.Print(string(data))
		case "text", "":
			if stats.TotalCount == 0 {
				fmt.Println("You have no tasks.")
				return nil
			}
			renderStatistics(os.Stdout, stats)
		default:
			return fmt.Errorf("unsupported format %q (use text, json or yaml)", statsFormat)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "text", "Output format: text, json or yaml")
	_ = statsCmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))
	rootCmd.AddCommand(statsCmd)
}

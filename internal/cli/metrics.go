package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	todomcp "github.com/valter-silva-au/todo/internal/mcp"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display task activity metrics",
	Long: `Display activity metrics derived from the event log.

Metrics include how many tasks were added, edited, deleted, completed and
archived, how many were completed after their due date, and completions by
the urgency they had before being marked done.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (the event log may be disabled)")
		}

		sinceTime, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		// Table format.
		fmt.Printf("Metrics (since %s)\n\n", sinceTime.Format(time.DateOnly))
		fmt.Printf("  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Printf("  %-24s %d\n", "Tasks added:", metrics.TasksAdded)
		fmt.Printf("  %-24s %d\n", "Tasks edited:", metrics.TasksEdited)
		fmt.Printf("  %-24s %d\n", "Tasks deleted:", metrics.TasksDeleted)
		fmt.Printf("  %-24s %d\n", "Tasks completed:", metrics.TasksCompleted)
		fmt.Printf("  %-24s %d\n", "Completed late:", metrics.CompletedLate)
		fmt.Printf("  %-24s %d\n", "Tasks archived:", metrics.TasksArchived)

		if len(metrics.CompletedByUrgency) > 0 {
			fmt.Println("\n  Completed by urgency:")
			keys := make([]string, 0, len(metrics.CompletedByUrgency))
			for k := range metrics.CompletedByUrgency {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("    %-20s %d\n", k+":", metrics.CompletedByUrgency[k])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Printf("\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Printf("  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// parseSinceDuration parses "7d", "30d" or "24h" into a time before now.
// An empty string means the last seven days.
func parseSinceDuration(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "7d"
	}
	return todomcp.ParseSince(s, time.Now().UTC())
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}

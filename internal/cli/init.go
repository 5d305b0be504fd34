package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/core"
)

// ProjectInit is the ProjectInitializer used by the init command.
// Set during application wiring.
var ProjectInit core.ProjectInitializer

var (
	initNoColor  bool
	initNoEvents bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a .todoconfig and empty task logs",
	Long: `Initialize a directory for todo: write a .todoconfig listing every
setting with its default, and create empty tasks.txt and completed_tasks.txt.

todo looks for .todoconfig in the working directory and its parents, so a
directory initialized here is used from anywhere below it.

Safe to run on existing directories: files that already exist are skipped
and not overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ProjectInit == nil {
			return fmt.Errorf("project initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		result, err := ProjectInit.Init(core.InitConfig{
			BasePath:      absPath,
			Color:         !initNoColor,
			DisableEvents: initNoEvents,
		})
		if err != nil {
			return fmt.Errorf("initializing %s: %w", absPath, err)
		}

		if len(result.Created) > 0 {
			fmt.Println("Created:")
			for _, p := range result.Created {
				fmt.Printf("  %s\n", relOrSelf(absPath, p))
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Println("Skipped (already exist):")
			for _, p := range result.Skipped {
				fmt.Printf("  %s\n", relOrSelf(absPath, p))
			}
		}

		fmt.Printf("\ntodo initialized at %s\n", absPath)
		return nil
	},
}

func relOrSelf(base, p string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return p
	}
	return rel
}

func init() {
	initCmd.Flags().BoolVar(&initNoColor, "no-color-config", false, "Write display.color: false")
	initCmd.Flags().BoolVar(&initNoEvents, "no-events", false, "Write events.enabled: false")
	rootCmd.AddCommand(initCmd)
}

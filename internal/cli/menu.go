package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

const menuText = `1 - View To-Do List
2 - View Incomplete Tasks
3 - View Completed Tasks
4 - Add Task
5 - Edit Task
6 - Delete Task
7 - Mark Task as Complete
8 - Search Tasks
9 - Show Statistics
10 - Save and Quit
`

// menuAction runs one menu entry. Returning io.EOF ends the session.
type menuAction func(p *prompter) error

var menuActions = map[int]menuAction{
	1: menuViewAll,
	2: menuViewIncomplete,
	3: menuViewCompleted,
	4: menuAdd,
	5: menuEdit,
	6: menuDelete,
	7: menuMarkComplete,
	8: menuSearch,
	9: menuStatistics,
}

const menuQuit = 10

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the interactive menu",
	Long: `Start the numbered interactive menu. This is also what running todo
without a subcommand does.

Every change is saved as soon as it is made. Choosing "Save and Quit" or
ending input (Ctrl-D) saves once more and exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func maxRetries() int {
	if Config == nil {
		return 3
	}
	return Config.MaxRetries
}

// runMenu drives the interactive session until the user quits or input
// ends. Errors from a single action are reported and the menu continues.
func runMenu(in io.Reader, out io.Writer) error {
	if TaskMgr == nil {
		return fmt.Errorf("task manager not initialized")
	}

	p := newPrompter(in, out, maxRetries())
	p.println("======= To-Do List =======")

	for {
		p.println()
		p.printf("%s\n", menuText)
		answer, err := p.ask("Enter your choice: ")
		if errors.Is(err, io.EOF) {
			return saveAndQuit(p)
		}
		if err != nil {
			return err
		}

		choice, convErr := strconv.Atoi(strings.TrimSpace(answer))
		if convErr != nil {
			p.println("Please enter a valid number.")
			continue
		}
		if choice == menuQuit {
			p.println("exiting and saving......")
			return saveAndQuit(p)
		}

		action, ok := menuActions[choice]
		if !ok {
			p.println("Invalid choice. Please try again.")
			continue
		}

		err = action(p)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return saveAndQuit(p)
		case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrInvalidSelection):
			p.println("Too many invalid answers, returning to the menu.")
		default:
			p.printf("Error: %v\n", err)
		}
	}
}

func saveAndQuit(p *prompter) error {
	if _, err := TaskMgr.Flush(); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	p.println("Tasks saved successfully. Goodbye!")
	return nil
}

// showPositional lists the active tasks in stored order, which is the
// numbering edit, delete and complete select by.
func showPositional(p *prompter, tasks []models.Task) {
	p.println()
	p.println("current to-do list:")
	renderTasks(p.out, core.View(tasks, TaskMgr.Now()))
	p.println()
}

func menuViewAll(p *prompter) error {
	p.println()
	p.println("current to-do list:")
	sorted := TaskMgr.Sorted()
	if len(sorted) == 0 {
		p.println("you have no pending tasks :)")
		return nil
	}
	renderTasks(p.out, core.View(sorted, TaskMgr.Now()))
	return nil
}

func menuViewIncomplete(p *prompter) error {
	p.println()
	p.println("Incomplete tasks:")
	incomplete := core.FilterIncomplete(TaskMgr.Sorted())
	if len(incomplete) == 0 {
		p.println("You have no incomplete tasks.")
		return nil
	}
	renderTasks(p.out, core.View(incomplete, TaskMgr.Now()))
	return nil
}

func menuViewCompleted(p *prompter) error {
	p.println()
	p.println("Completed tasks (archived):")
	entries, err := TaskMgr.Archived()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		p.println("You have no completed tasks.")
		return nil
	}
	renderArchived(p.out, entries)
	return nil
}

func menuAdd(p *prompter) error {
	fallback := models.StatusNonUrgent
	if Config != nil && Config.DefaultStatus != "" {
		fallback = Config.DefaultStatus
	}

	for {
		p.println()
		name, err := p.askName("enter the task you want to add: ", false)
		if err != nil {
			return err
		}
		status, err := p.askStatus(
			fmt.Sprintf("enter the status of the task (urgent, non-urgent, semi-urgent) [%s]: ", fallback),
			fallback, false)
		if err != nil {
			return err
		}
		due, err := p.askDueDate("enter the due date (DD-MM-YYYY) or press Enter for no due date: ", models.NoDueDate)
		if err != nil {
			return err
		}

		if _, err := TaskMgr.Add(models.Task{Name: name, Status: status, DueDate: due}); err != nil {
			return err
		}
		p.println("task added successfully")
		showPositional(p, TaskMgr.Tasks())

		again, err := p.confirm("do you want to add another task? (yes/no): ")
		if err != nil || !again {
			return err
		}
	}
}

func menuEdit(p *prompter) error {
	tasks := TaskMgr.Tasks()
	if len(tasks) == 0 {
		p.println("Your to-do list is empty.")
		return nil
	}
	showPositional(p, tasks)

	idx, err := p.chooseTask("Enter the number of the task you want to edit: ", len(tasks))
	if err != nil {
		return err
	}
	name, err := p.askName("Enter the new task name or press Enter to keep current: ", true)
	if err != nil {
		return err
	}
	status, err := p.askStatus(
		"Enter the new status (urgent, non-urgent, semi-urgent, Done) or press Enter to keep current: ", "", true)
	if err != nil {
		return err
	}
	due, err := p.askDueDate("Enter the new due date (DD-MM-YYYY) or press Enter to keep current: ", "")
	if err != nil {
		return err
	}

	edited, err := TaskMgr.Edit(idx, core.TaskUpdate{Name: name, Status: status, DueDate: due})
	if err != nil {
		return err
	}
	p.println("Task updated successfully.")
	if edited.Status.IsDone() {
		p.printf("Task '%s' is done and has been archived.\n", edited.Name)
	}
	return nil
}

func menuDelete(p *prompter) error {
	for {
		tasks := TaskMgr.Tasks()
		if len(tasks) == 0 {
			p.println("your to-do list is empty")
			return nil
		}
		showPositional(p, tasks)

		idx, err := p.chooseTask("enter the number of the task you want to delete: ", len(tasks))
		if err != nil {
			return err
		}
		removed, err := TaskMgr.Delete(idx)
		if err != nil {
			return err
		}
		p.printf("Task Removed: %s\n", removed.Name)

		again, err := p.confirm("do you want to delete another task? (yes/no): ")
		if err != nil || !again {
			return err
		}
	}
}

func menuMarkComplete(p *prompter) error {
	for {
		tasks := TaskMgr.Tasks()
		if len(tasks) == 0 {
			p.println("your to-do list is empty")
			return nil
		}
		showPositional(p, tasks)

		idx, err := p.chooseTask("enter the number of the task you want to mark as complete: ", len(tasks))
		if err != nil {
			return err
		}
		done, err := TaskMgr.MarkComplete(idx)
		if err != nil {
			return err
		}
		p.printf("Task '%s' marked as Done and archived.\n", done.Name)

		again, err := p.confirm("do you want to mark another task as complete? (yes/no): ")
		if err != nil || !again {
			return err
		}
	}
}

func menuSearch(p *prompter) error {
	if len(TaskMgr.Tasks()) == 0 {
		p.println("Your to-do list is empty.")
		return nil
	}
	term, err := p.ask("Enter search term: ")
	if err != nil {
		return err
	}

	matches := TaskMgr.Search(term)
	if len(matches) == 0 {
		p.println("No tasks found matching your search.")
		return nil
	}
	p.printf("\nTasks matching '%s':\n", strings.ToLower(term))
	renderTasks(p.out, core.View(matches, TaskMgr.Now()))
	return nil
}

func menuStatistics(p *prompter) error {
	stats, err := TaskMgr.Statistics()
	if err != nil {
		return err
	}
	p.println()
	if stats.TotalCount == 0 {
		p.println("You have no tasks.")
		return nil
	}
	renderStatistics(p.out, stats)
	return nil
}

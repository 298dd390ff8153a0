package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
)

var (
	taskStatus string
	taskNote   string
	taskLimit  int
	taskJSON   bool
	exportXLSX string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage captured tasks",
	Long:  `List, complete, reopen, delete, or export the tasks extracted from your notes.`,
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks by due date",
	Args:  cobra.NoArgs,
	RunE:  runTasksList,
}

var tasksCompleteCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksComplete,
}

var tasksReopenCmd = &cobra.Command{
	Use:   "reopen [task-id]",
	Short: "Mark a task as todo again",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksReopen,
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksDelete,
}

var tasksExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks as CSV or an Excel workbook",
	Long: `Writes tasks as CSV to stdout, or as an .xlsx workbook with --xlsx.

Examples:
  brain tasks export > tasks.csv
  brain tasks export --status todo --xlsx ~/Desktop/tasks.xlsx`,
	Args: cobra.NoArgs,
	RunE: runTasksExport,
}

func init() {
	for _, c := range []*cobra.Command{tasksListCmd, tasksExportCmd} {
		c.Flags().StringVar(&taskStatus, "status", "", "only tasks with this status: todo or completed")
		c.Flags().StringVar(&taskNote, "note", "", "only tasks extracted from this note")
	}
	tasksListCmd.Flags().IntVarP(&taskLimit, "limit", "n", 0, "maximum number of tasks (0 = all)")
	tasksListCmd.Flags().BoolVar(&taskJSON, "json", false, "output tasks as JSON")
	tasksExportCmd.Flags().StringVar(&exportXLSX, "xlsx", "", "write an Excel workbook to this path")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksCompleteCmd)
	tasksCmd.AddCommand(tasksReopenCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)
	tasksCmd.AddCommand(tasksExportCmd)
	rootCmd.AddCommand(tasksCmd)
}

func taskFilter() (domain.TaskFilter, error) {
	status := domain.TaskStatus(taskStatus)
	if status != "" && !status.IsValid() {
		return domain.TaskFilter{}, fmt.Errorf("unknown status %q (use todo or completed)", taskStatus)
	}
	return domain.TaskFilter{Status: status, NoteID: taskNote, Limit: taskLimit}, nil
}

func runTasksList(cmd *cobra.Command, _ []string) error {
	if taskService == nil {
		return errors.New("task service not configured")
	}
	filter, err := taskFilter()
	if err != nil {
		return err
	}

	tasks, err := taskService.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if taskJSON {
		data, err := json.MarshalIndent(toJSONViews(tasks), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal tasks: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(tasks) == 0 {
		cmd.Println("No tasks found.")
		return nil
	}
	printTasks(cmd, tasks)
	cmd.Printf("Total: %d tasks\n", len(tasks))
	return nil
}

func runTasksComplete(cmd *cobra.Command, args []string) error {
	return setTaskCompleted(cmd, args[0], true)
}

func runTasksReopen(cmd *cobra.Command, args []string) error {
	return setTaskCompleted(cmd, args[0], false)
}

func setTaskCompleted(cmd *cobra.Command, id string, completed bool) error {
	if taskService == nil {
		return errors.New("task service not configured")
	}
	view, err := taskService.SetCompleted(cmd.Context(), id, completed)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	cmd.Printf("Task %q is now %s.\n", view.Title, view.Status)
	return nil
}

func runTasksDelete(cmd *cobra.Command, args []string) error {
	if taskService == nil {
		return errors.New("task service not configured")
	}
	if err := taskService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	cmd.Printf("Task %s deleted.\n", args[0])
	return nil
}

func runTasksExport(cmd *cobra.Command, _ []string) error {
	if taskService == nil {
		return errors.New("task service not configured")
	}
	filter, err := taskFilter()
	if err != nil {
		return err
	}
	filter.Limit = 0

	tasks, err := taskService.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if exportXLSX == "" {
		return writeTasksCSV(cmd.OutOrStdout(), tasks)
	}
	if err := writeTasksXLSX(exportXLSX, tasks); err != nil {
		return err
	}
	cmd.Printf("Exported %d tasks to %s\n", len(tasks), exportXLSX)
	return nil
}

// printTasks prints one block per task.
func printTasks(cmd *cobra.Command, tasks []driving.TaskView) {
	for i := range tasks {
		t := tasks[i]
		box := "[ ]"
		if t.Status == domain.TaskStatusCompleted {
			box = "[x]"
		}
		cmd.Printf("  %s %s\n", box, t.Title)
		if t.DueDate != nil {
			due := t.DueDate.String()
			if t.IsOverdue {
				due += " (overdue)"
			}
			cmd.Printf("      Due:  %s\n", due)
		}
		if t.Description != nil {
			cmd.Printf("      Note: %s\n", *t.Description)
		}
		cmd.Printf("      ID:   %s\n", t.ID)
		cmd.Println()
	}
}

// taskJSONView is the JSON shape of a task.
type taskJSONView struct {
	ID          string  `json:"id"`
	NoteID      string  `json:"note_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      string  `json:"status"`
	Source      string  `json:"source"`
	Overdue     bool    `json:"overdue"`
	CreatedAt   string  `json:"created_at"`
}

func toJSONViews(tasks []driving.TaskView) []taskJSONView {
	out := make([]taskJSONView, len(tasks))
	for i := range tasks {
		t := tasks[i]
		out[i] = taskJSONView{
			ID:          t.ID,
			NoteID:      t.NoteID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status.String(),
			Source:      t.Source.String(),
			Overdue:     t.IsOverdue,
			CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		}
		if t.DueDate != nil {
			s := t.DueDate.String()
			out[i].DueDate = &s
		}
	}
	return out
}

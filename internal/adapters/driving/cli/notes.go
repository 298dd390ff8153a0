package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var noteLimit int

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Browse captured notes",
	Long:  `List captured notes, show a note with its tasks, or delete a note.`,
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	Args:  cobra.NoArgs,
	RunE:  runNotesList,
}

var notesShowCmd = &cobra.Command{
	Use:   "show [note-id]",
	Short: "Show a note and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesShow,
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete [note-id]",
	Short: "Delete a note and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesDelete,
}

// previewLength is how much note text list shows.
const previewLength = 60

func init() {
	notesListCmd.Flags().IntVarP(&noteLimit, "limit", "n", 20, "maximum number of notes (0 = all)")

	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesShowCmd)
	notesCmd.AddCommand(notesDeleteCmd)
	rootCmd.AddCommand(notesCmd)
}

func runNotesList(cmd *cobra.Command, _ []string) error {
	if noteService == nil {
		return errors.New("note service not configured")
	}

	notes, err := noteService.List(cmd.Context(), noteLimit)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}
	if len(notes) == 0 {
		cmd.Println("No notes found.")
		return nil
	}

	for i := range notes {
		n := notes[i]
		cmd.Printf("  %s  %s  %-8s %s\n",
			n.ID, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Source, preview(n.RawText))
	}
	cmd.Printf("\nTotal: %d notes\n", len(notes))
	return nil
}

func runNotesShow(cmd *cobra.Command, args []string) error {
	if noteService == nil {
		return errors.New("note service not configured")
	}

	details, err := noteService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get note: %w", err)
	}

	n := details.Note
	cmd.Printf("Note: %s\n\n", n.ID)
	cmd.Printf("  Source:   %s\n", n.Source)
	cmd.Printf("  Type:     %s\n", n.MediaType)
	if n.FileName != "" {
		cmd.Printf("  File:     %s\n", n.FileName)
	}
	cmd.Printf("  Created:  %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	cmd.Println()
	cmd.Println(n.RawText)
	cmd.Println()

	if len(details.Tasks) == 0 {
		cmd.Println("No tasks were extracted from this note.")
		return nil
	}
	cmd.Printf("Tasks (%d):\n\n", len(details.Tasks))
	printTasks(cmd, details.Tasks)
	return nil
}

func runNotesDelete(cmd *cobra.Command, args []string) error {
	if noteService == nil {
		return errors.New("note service not configured")
	}
	if err := noteService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	cmd.Printf("Note %s and its tasks deleted.\n", args[0])
	return nil
}

// preview returns the first line of text, shortened to previewLength runes.
func preview(text string) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	r := []rune(line)
	if len(r) > previewLength {
		return string(r[:previewLength-3]) + "..."
	}
	return line
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
)

var (
	captureSource string
	captureJSON   bool
	uploadType    string
)

var processCmd = &cobra.Command{
	Use:   "process [text|-]",
	Short: "Extract commitments from text",
	Long: `Runs the capture pipeline on a piece of text and saves the commitments
found as tasks. With no argument, or '-', the text is read from stdin.

Examples:
  brain process "I'll send the deck to Sam by Friday"
  pbpaste | brain process --source meeting`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Extract commitments from a file",
	Long: `Runs the capture pipeline on a file. Supported types are plain text,
Markdown, PDF, DOCX, and JPEG, PNG or HEIC images.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	for _, c := range []*cobra.Command{processCmd, uploadCmd} {
		c.Flags().StringVarP(&captureSource, "source", "s", "", "where the text came from: meeting, email, message, note, other")
		c.Flags().BoolVar(&captureJSON, "json", false, "output the result as JSON")
	}
	uploadCmd.Flags().StringVarP(&uploadType, "type", "t", "", "media type, overriding the file extension")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(uploadCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if captureService == nil {
		return errors.New("capture service not configured")
	}
	source, err := parseSourceFlag()
	if err != nil {
		return err
	}

	var text string
	if len(args) == 1 && args[0] != "-" {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	res, err := captureService.Capture(cmd.Context(), driving.CaptureRequest{
		Content:   []byte(text),
		MediaType: domain.MediaTypePlainText,
		Source:    source,
	})
	return reportCapture(cmd, res, err)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if captureService == nil {
		return errors.New("capture service not configured")
	}
	source, err := parseSourceFlag()
	if err != nil {
		return err
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	req := driving.CaptureRequest{
		Content:  content,
		Source:   source,
		FileName: filepath.Base(path),
	}
	if uploadType != "" {
		req.MediaType = domain.ParseMediaType(uploadType)
	}

	res, err := captureService.Capture(cmd.Context(), req)
	return reportCapture(cmd, res, err)
}

func parseSourceFlag() (domain.SourceCategory, error) {
	source, ok := domain.ParseSourceCategory(captureSource)
	if !ok {
		return "", fmt.Errorf("unknown source %q (use meeting, email, message, note or other)", captureSource)
	}
	return source, nil
}

// captureJSONOutput is the --json shape of a capture.
type captureJSONOutput struct {
	NoteID string         `json:"note_id"`
	Source string         `json:"source"`
	Tasks  []taskJSONView `json:"tasks"`
	Error  string         `json:"error,omitempty"`
}

// reportCapture prints a capture result. A note saved without its tasks is
// reported before the error is returned.
func reportCapture(cmd *cobra.Command, res *driving.CaptureResult, err error) error {
	var derr *domain.DecodeError
	if errors.As(err, &derr) {
		return fmt.Errorf("could not read input: %s", derr.Cause)
	}
	if res == nil {
		if err == nil {
			err = errors.New("capture returned no result")
		}
		return fmt.Errorf("capture failed: %w", err)
	}

	today := domain.DateOf(time.Now())
	views := make([]driving.TaskView, len(res.Tasks))
	for i, t := range res.Tasks {
		views[i] = driving.TaskView{Task: t, IsOverdue: t.IsOverdue(today)}
	}

	if captureJSON {
		out := captureJSONOutput{
			NoteID: res.Note.ID,
			Source: res.Note.Source.String(),
			Tasks:  toJSONViews(views),
		}
		if err != nil {
			out.Error = err.Error()
		}
		data, mErr := json.MarshalIndent(out, "", "  ")
		if mErr != nil {
			return fmt.Errorf("failed to marshal result: %w", mErr)
		}
		cmd.Println(string(data))
		return err
	}

	cmd.Printf("Saved note %s (%s)\n", res.Note.ID, res.Note.Source)
	if err != nil {
		return fmt.Errorf("tasks were not saved: %w", err)
	}
	if len(views) == 0 {
		cmd.Println("No commitments found.")
		return nil
	}

	cmd.Printf("\n%d task(s):\n\n", len(views))
	printTasks(cmd, views)
	return nil
}

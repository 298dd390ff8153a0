package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdullah-sah/brain-assistant/internal/adapters/driving/watcher"
	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
)

var (
	watchRecursive bool
	watchInitial   bool
	watchDebounce  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Capture files dropped into a folder",
	Long: `Watches a folder and captures each supported file once its writes
settle. Runs until interrupted.

Examples:
  brain watch ~/Transcripts --source meeting
  brain watch ~/Inbox -r --initial`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&captureSource, "source", "s", "", "source recorded on captured notes")
	watchCmd.Flags().BoolVarP(&watchRecursive, "recursive", "r", false, "also watch subfolders")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "capture files already in the folder")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet time before a file is captured")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if captureService == nil {
		return errors.New("capture service not configured")
	}
	source, err := parseSourceFlag()
	if err != nil {
		return err
	}

	w := watcher.New(captureService, watcher.Config{
		Root:        args[0],
		Recursive:   watchRecursive,
		InitialScan: watchInitial,
		Debounce:    watchDebounce,
		Source:      source,
	})
	w.OnEvent(func(e watcher.Event) {
		cmd.Println(describeWatchEvent(e))
	})

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(cmd.Context())
}

func describeWatchEvent(e watcher.Event) string {
	var derr *domain.DecodeError
	switch {
	case errors.As(e.Err, &derr):
		return fmt.Sprintf("skipped %s: %s", e.Path, derr.Cause)
	case e.Err != nil && e.Result != nil:
		return fmt.Sprintf("saved note %s from %s, but tasks were not saved: %v", e.Result.Note.ID, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("failed %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("captured %s: %d task(s), note %s", e.Path, len(e.Result.Tasks), e.Result.Note.ID)
	}
}

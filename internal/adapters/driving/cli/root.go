// Package cli provides the cobra command tree for the brain binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services injected by main.
var (
	captureService  driving.CaptureService
	taskService     driving.TaskService
	noteService     driving.NoteService
	settingsService driving.SettingsService
	llmValidator    driven.AIConfigValidator
)

var (
	verboseFlag bool
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "brain",
	Short: "Capture the commitments you make",
	Long: `brain reads meeting transcripts, emails, notes, documents and photos,
pulls out the things you said you would do, and keeps them as tasks with
due dates.

Paste text with 'brain process', add a file with 'brain upload', or point
'brain watch' at a folder. Review what was captured with 'brain tasks list'.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetVerbose(verboseFlag)
		logger.SetQuiet(quietFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print pipeline progress and debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress warnings")
}

// Services holds the driving ports the commands call.
type Services struct {
	Capture  driving.CaptureService
	Tasks    driving.TaskService
	Notes    driving.NoteService
	Settings driving.SettingsService

	// Validator checks provider credentials after they change. Optional.
	Validator driven.AIConfigValidator
}

// SetServices injects the services used by all commands.
func SetServices(s Services) {
	captureService = s.Capture
	taskService = s.Tasks
	noteService = s.Notes
	settingsService = s.Settings
	llmValidator = s.Validator
}

// SetVersion sets the version reported by 'brain version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

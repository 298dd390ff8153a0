package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
)

var skipValidation bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change who you are, which model extracts your commitments,
and how dates, images and storage are handled.

Settings live in ~/.brain/config.toml. USER_NAME, USER_IDENTIFIERS,
OPENAI_API_KEY and ANTHROPIC_API_KEY override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a single setting by key. Run 'brain settings keys' for the list.

Examples:
  brain settings set identity.name "Sam Lee"
  brain settings set identity.aliases "Sam,SL"
  brain settings set llm.provider ollama
  brain settings set dates.strict_window true`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsAPIKeyCmd = &cobra.Command{
	Use:   "api-key [provider]",
	Short: "Store an API key without echoing it",
	Long: `Prompts for an API key and stores it with the provider. The provider
defaults to the configured one. The key is checked against the provider
unless --no-validate is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsAPIKey,
}

func init() {
	settingsAPIKeyCmd.Flags().BoolVar(&skipValidation, "no-validate", false, "store the key without contacting the provider")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsAPIKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Identity]")
	cmd.Printf("  Name: %s\n", settings.Identity.Name)
	if len(settings.Identity.Aliases) > 0 {
		cmd.Printf("  Aliases: %s\n", strings.Join(settings.Identity.Aliases, ", "))
	}
	cmd.Println()

	llm := settings.LLM
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", llm.Provider.Description())
	cmd.Printf("  Model: %s\n", orDefault(llm.Model))
	if llm.VisionModel != "" {
		cmd.Printf("  Vision model: %s\n", llm.VisionModel)
	}
	if llm.BaseURL != "" || llm.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", orDefault(llm.BaseURL))
	}
	if llm.Provider.RequiresAPIKey() {
		if llm.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(llm.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	if llm.RequestsPerMinute > 0 {
		cmd.Printf("  Rate limit: %d requests/minute\n", llm.RequestsPerMinute)
	}
	status := "configured"
	if !llm.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Decode timeout: %s\n", settings.Pipeline.DecodeTimeout)
	cmd.Printf("  Extract timeout: %s\n", settings.Pipeline.ExtractTimeout)
	cmd.Printf("  Max upload: %d MB\n", settings.MaxUploadBytes/(1024*1024))
	cmd.Println()

	cmd.Println("[Dates]")
	cmd.Printf("  Past window: %d years %d days\n", settings.Dates.PastYears, settings.Dates.PastDays)
	cmd.Printf("  Future window: %d years\n", settings.Dates.FutureYears)
	cmd.Printf("  Strict: %t\n", settings.Dates.StrictWindow)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.Backend == domain.StoragePostgres {
		cmd.Printf("  DSN: %s\n", maskDSN(settings.Storage.DSN))
	} else {
		cmd.Printf("  Path: %s\n", orDefault(settings.Storage.Path))
	}
	cmd.Println()

	if !llm.IsConfigured() {
		cmd.Println("Warning: no LLM provider is configured, so no commitments will be extracted.")
		cmd.Println("Run 'brain settings api-key' or 'brain settings set llm.provider ollama' to fix.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key, value := args[0], args[1]
	if key == "llm.api_key" {
		return errors.New("use 'brain settings api-key' so the key is not kept in shell history")
	}
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsAPIKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	current, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	provider := current.LLM.Provider
	if len(args) == 1 {
		provider = domain.AIProvider(strings.ToLower(args[0]))
	}
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q (use openai, anthropic or ollama)", provider)
	}
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("%s does not use an API key", provider.Description())
	}

	cmd.Printf("Enter %s API key: ", provider.Description())
	apiKey := strings.TrimSpace(readPassword(cmd.InOrStdin()))
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required for this provider")
	}

	model := ""
	if provider == current.LLM.Provider {
		model = current.LLM.Model
	}
	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if !skipValidation && llmValidator != nil {
		updated, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Print("Validating configuration... ")
		if err := llmValidator.ValidateLLM(&updated.LLM); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("API key stored for %s.\n", provider.Description())
	return nil
}

// Helper functions.

// readPassword reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// maskDSN hides the password of a postgres URL.
func maskDSN(dsn string) string {
	at := strings.LastIndexByte(dsn, '@')
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if i := strings.IndexByte(creds, ':'); i >= 0 {
		return dsn[:scheme+3] + creds[:i] + ":****" + dsn[at:]
	}
	return dsn
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subpad/internal/config"
	"subpad/internal/document"
	"subpad/internal/importer"
	"subpad/internal/prefs"
	"subpad/internal/subtitle"
	"subpad/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [file]",
	Short: "Rewrite a subtitle file's text using AI",
	Long: `Run an AI instruction over the text of one subtitle file.

The file is imported, its text rewritten by the configured provider, the
result synced back onto the timed entries and written out. Timestamps are
never sent for rewriting and never change.

With no --instruction the saved editor instruction is used.

Examples:
  subpad translate episode.srt -i "Translate to French"
  subpad translate episode.srt --provider openai -o episode.fr.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("instruction", "i", "", "Instruction for the AI (default: saved editor instruction)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set the provider's env var)")
	translateCmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		String("model", "", "Model to use (provider-specific default when empty)")
	translateCmd.Flags().
		StringP("output", "o", "", "Output path (default: <name>.translated.<ext>)")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	ctx := context.Background()

	instruction, _ := cmd.Flags().GetString("instruction")
	apiKey, _ := cmd.Flags().GetString("api-key")
	providerStr, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if providerStr == "" {
		providerStr = cfg.Translation.Provider
	}
	if model == "" {
		model = cfg.Translation.Model
	}
	if apiKey == "" {
		apiKey = cfg.APIKey()
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			cfg.Translation.APIKeyEnv,
		)
	}

	if instruction == "" {
		instruction = savedInstruction(ctx, cfg.PrefsPath)
	}

	svc, err := translate.Factory(
		ctx,
		translate.Provider(providerStr),
		apiKey,
		translate.Options{Model: model},
	)
	if err != nil {
		return fmt.Errorf("failed to create translation service: %w", err)
	}

	logger.Infow("Importing file", "input", inputPath)
	var collection document.Collection
	collection, summary := importer.ImportFiles(
		ctx,
		collection,
		[]importer.Source{importer.FromPath(inputPath)},
		nil,
	)
	if summary.Added == 0 {
		return fmt.Errorf("could not read %s: %v", inputPath, summary.Errors[0].Err)
	}
	doc := collection.Documents[0]
	if strings.TrimSpace(doc.NotepadText) == "" {
		return fmt.Errorf("file contains no text to process")
	}

	logger.Infow("Processing text",
		"provider", providerStr,
		"model", model,
		"entries", len(doc.Entries),
	)
	collection, err = translate.ProcessDocument(ctx, svc, collection, doc.ID, instruction)
	if err != nil {
		return err
	}
	doc = collection.Documents[0].Sync()

	ext := filepath.Ext(inputPath)
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, ext) + ".translated" + ext
	}
	format := subtitle.Format(strings.ToLower(strings.TrimPrefix(ext, ".")))
	if !subtitle.IsValidFormat(format) || len(doc.Entries) == 0 {
		format = subtitle.FormatRaw
	}
	content := subtitle.Serialize(doc.Entries, doc.NotepadText, format)
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Text processed successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(doc.Entries))
	return nil
}

// savedInstruction loads the instruction the editor persisted, falling back
// to the default when the store cannot be opened.
func savedInstruction(ctx context.Context, prefsPath string) string {
	store, err := prefs.Open(prefsPath)
	if err != nil {
		logger.Warnw("Failed to open preferences, using default instruction",
			"error", err,
		)
		return prefs.DefaultInstruction
	}
	defer func() {
		_ = store.Close()
	}()

	instruction, err := store.Instruction(ctx)
	if err != nil {
		return prefs.DefaultInstruction
	}
	return instruction
}

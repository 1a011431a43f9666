package cli

import (
	"subpad/internal/logging"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "subpad",
	Short: "Subtitle editor with a synced notepad view",
	Long: `SubPad is a subtitle editor built around two views of the same
document: structured timed entries and a free-text notepad that stays in
sync with them.

It imports SRT and plain text files, exports to srt, vtt, txt, lrc and
raw text, and can rewrite subtitle text through an AI provider.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Path to config file")
}

// Package main implements the suggest CLI - the skill-activation engine
// invoked by the hook host on every user prompt.
//
// # File Index
//
// Entry Point & Global State:
//   - main.go         - Entry point, rootCmd, global flags, init()
//
// Core Commands:
//   - run.go          - runSuggest() hook/json pipeline, runProfile(),
//                       readHookInput(), buildEngine(), logActivation()
//   - cmd_validate.go - validateCmd, runValidate() index diagnostics
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"skillsuggest/internal/logging"
)

var (
	// Global flags
	verbose       bool
	formatFlag    string
	topK          int
	incompleteFlg bool
	profilePath   string
	indexPath     string
	registryPath  string
	activationLog string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command: read the hook input from stdin,
// score it against the index, and write the suggestion payload to stdout.
var rootCmd = &cobra.Command{
	Use:   "suggest",
	Short: "suggest - lexical skill-activation engine",
	Long: `suggest ranks indexed elements (skills, agents, commands, rules, MCP and
LSP servers) against a user prompt and emits a structured suggestion payload.

Matching is deterministic and lexical: abbreviation, synonym, and stemming
expansion feed a multi-signal weighted scorer with domain gating and
sub-task decomposition. The index is read-only input produced offline.

Reads {"prompt": "...", "cwd": "..."} from stdin unless --agent-profile is
given. stdout carries only the JSON payload; diagnostics go to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Logger writes to stderr only; the hook host parses stdout as JSON.
		config := zap.NewProductionConfig()
		config.OutputPaths = []string{"stderr"}
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if profilePath != "" {
			return runProfile()
		}
		return runSuggest()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging on stderr")
	rootCmd.PersistentFlags().StringVar(&indexPath, "load-index", "skill-index.json", "Path to skill-index.json")
	rootCmd.PersistentFlags().StringVar(&registryPath, "load-registry", "domain-registry.json", "Path to domain-registry.json (optional)")

	rootCmd.Flags().StringVar(&formatFlag, "format", "hook", "Output format: hook or json")
	rootCmd.Flags().IntVar(&topK, "top", 0, "Maximum results to emit (default from config)")
	rootCmd.Flags().BoolVar(&incompleteFlg, "incomplete-mode", false, "Skip tier boosts and explicit boost values (pass-2 candidate search)")
	rootCmd.Flags().StringVar(&profilePath, "agent-profile", "", "Score a structured agent descriptor file instead of a stdin prompt")
	rootCmd.Flags().StringVar(&activationLog, "activation-log", "", "Append a JSONL activation record to this file")

	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"skillsuggest/internal/activationlog"
	"skillsuggest/internal/config"
	"skillsuggest/internal/emit"
	"skillsuggest/internal/engine"
	"skillsuggest/internal/index"
	"skillsuggest/internal/profile"
	"skillsuggest/internal/prompt"
)

// ErrPromptMalformed means the stdin payload was not parseable JSON. The
// empty payload is still emitted so the host never blocks.
var ErrPromptMalformed = errors.New("prompt input malformed")

// hookInput is the stdin payload of a hook invocation.
type hookInput struct {
	Prompt string `json:"prompt"`
	CWD    string `json:"cwd,omitempty"`
}

// readHookInput parses stdin. A partial or empty payload is valid and
// yields an empty prompt; only unparseable JSON is an error.
func readHookInput(r io.Reader) (hookInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return hookInput{}, fmt.Errorf("%w: read stdin: %v", ErrPromptMalformed, err)
	}
	if len(data) == 0 {
		return hookInput{}, nil
	}
	var in hookInput
	if err := json.Unmarshal(data, &in); err != nil {
		return hookInput{}, fmt.Errorf("%w: %v", ErrPromptMalformed, err)
	}
	return in, nil
}

// outputFormat validates the --format flag.
func outputFormat() (emit.Format, error) {
	switch formatFlag {
	case "hook":
		return emit.FormatHook, nil
	case "json":
		return emit.FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want hook or json)", formatFlag)
	}
}

// buildEngine loads the index and constructs the pipeline.
func buildEngine() (*engine.Engine, *index.ElementSet, error) {
	cfg := config.DefaultScoringConfig()
	cfg.IncompleteMode = incompleteFlg

	set, registry, err := index.Load(indexPath, registryPath)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(cfg, set, registry, prompt.DefaultRules()), set, nil
}

// runSuggest is the hook/json path: one prompt in, one payload out. A
// panic anywhere in the pipeline still produces a well-formed empty payload.
func runSuggest() (err error) {
	format, ferr := outputFormat()
	if ferr != nil {
		return ferr
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in pipeline", zap.Any("panic", r))
			_ = emit.WriteEmpty(os.Stdout, format)
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	in, inErr := readHookInput(os.Stdin)
	if inErr != nil {
		_ = emit.WriteEmpty(os.Stdout, format)
		return inErr
	}
	if in.Prompt == "" {
		return emit.WriteEmpty(os.Stdout, format)
	}

	eng, _, loadErr := buildEngine()
	if loadErr != nil {
		logger.Error("index load failed", zap.Error(loadErr))
		_ = emit.WriteEmpty(os.Stdout, format)
		return loadErr
	}

	started := time.Now()
	results := eng.Suggest(in.Prompt, in.CWD, topK)
	logger.Debug("scored prompt",
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(started)))

	logActivation(in.Prompt, in.CWD, string(format), started, results)

	if format == emit.FormatHook {
		return emit.WriteHook(os.Stdout, results)
	}
	return emit.WriteJSON(os.Stdout, results)
}

// runProfile is the batch path: score a structured agent descriptor and
// emit the grouped payload.
func runProfile() (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in profiler", zap.Any("panic", r))
			_ = emit.WriteEmptyJSON(os.Stdout)
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	descriptor, derr := profile.LoadDescriptor(profilePath)
	if derr != nil {
		_ = emit.WriteEmptyJSON(os.Stdout)
		return derr
	}

	eng, set, loadErr := buildEngine()
	if loadErr != nil {
		logger.Error("index load failed", zap.Error(loadErr))
		_ = emit.WriteEmptyJSON(os.Stdout)
		return loadErr
	}

	payload, perr := profile.New(eng.Config(), eng, set).Profile(descriptor)
	if perr != nil {
		_ = emit.WriteEmptyJSON(os.Stdout)
		return perr
	}
	return emit.WriteProfile(os.Stdout, payload)
}

// logActivation appends the invocation record when --activation-log is set.
// Best effort by design; the engine itself never persists anything.
func logActivation(rawPrompt, cwd, mode string, started time.Time, results []engine.Result) {
	writer := activationlog.NewWriter(activationLog)
	if writer == nil {
		return
	}

	p := prompt.Normalize(rawPrompt, cwd)
	rec := activationlog.Record{
		InvocationID: uuid.NewString(),
		PromptHash:   p.Hash,
		Mode:         mode,
		ElapsedMS:    time.Since(started).Milliseconds(),
	}
	for _, r := range results {
		rec.Suggestions = append(rec.Suggestions, activationlog.Suggestion{
			Name:       r.Element.Name,
			Type:       string(r.Element.Type),
			Score:      r.Relative,
			Confidence: string(r.Confidence),
		})
	}
	writer.Append(rec)
}

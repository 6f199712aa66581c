package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/synthscroll/internal/config"
	"github.com/roach88/synthscroll/internal/deck"
)

// ErrCodeUnreachable flags a deck placed beyond the page's scroll range.
const ErrCodeUnreachable = "E103"

// LoadError represents an error that occurred while loading a config
// directory.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Line returns the CUE line of the error, or 0.
func (e *LoadError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// LoadConfig compiles the CUE files of dir. Every failure is a *LoadError
// carrying the CLI error code.
func LoadConfig(dir string) (config.Config, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return config.Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config directory not found: %s", dir)}
	}
	if err != nil {
		return config.Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config directory: %v", err)}
	}
	if !info.IsDir() {
		return config.Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := config.FindCUEFiles(dir)
	if err != nil {
		return config.Config{}, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return config.Config{}, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		le := &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
		var ce *config.CompileError
		if errors.As(err, &ce) {
			le.Message = fmt.Sprintf("%s: %s", ce.Field, ce.Message)
			le.Pos = ce.Pos
		}
		return config.Config{}, le
	}
	return cfg, nil
}

// LoadDeck loads dir and derives the deck geometry.
func LoadDeck(dir string) (config.Config, deck.Geometry, error) {
	cfg, err := LoadConfig(dir)
	if err != nil {
		return config.Config{}, deck.Geometry{}, err
	}
	g, err := deck.DeriveGeometry(cfg.Deck.CardHeights, cfg.Constants.Gap, cfg.Constants.TopDistance)
	if err != nil {
		return config.Config{}, deck.Geometry{}, &LoadError{Code: deckErrorCode(err), Message: err.Error()}
	}
	return cfg, g, nil
}

func deckErrorCode(err error) string {
	switch {
	case deck.IsEmptyDeck(err):
		return ErrCodeEmptyDeck
	case deck.IsInvalidHeight(err):
		return ErrCodeInvalidHeight
	default:
		return ErrCodeGeneric
	}
}

// loadFailure reports a LoadDeck/LoadConfig error. Load errors are command
// errors (exit 2).
func loadFailure(f *OutputFormatter, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		_ = f.Error(le.Code, le.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return f.fail(ExitCommandError, ErrCodeGeneric, "failed to load config", err)
}

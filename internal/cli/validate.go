package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/synthscroll/internal/config"
	"github.com/roach88/synthscroll/internal/deck"
)

// ValidationIssue is one problem found in a config directory.
type ValidationIssue struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Cards  int               `json:"cards,omitempty"`
	Length int64             `json:"animation_length,omitempty"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-dir>",
		Short: "Validate a deck config",
		Long: `Validate a deck config directory without running anything.

Checks the CUE against the schema, derives the deck geometry and checks
that the deck can be reached within the page's scroll range.

Exit codes:
  0 - Config valid
  1 - Config invalid
  2 - Command error (directory missing, no CUE files)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	cfg, err := LoadConfig(dir)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Code == ErrCodeLoadFailed {
			return outputValidationErrors(f, []ValidationIssue{{
				Code:    le.Code,
				Field:   "cue",
				Message: le.Message,
				Line:    le.Line(),
			}})
		}
		return loadFailure(f, err)
	}
	f.VerboseLog("Compiled config for deck %q", cfg.Deck.ID)

	issues, g := validateConfig(cfg)
	if len(issues) > 0 {
		return outputValidationErrors(f, issues)
	}

	result := ValidationResult{Valid: true, Cards: len(g.Cards), Length: g.AnimationLength}
	if f.JSON() {
		return f.Success(result)
	}
	f.Printf("✓ Config valid: deck %q, %d cards, animation length %d\n", cfg.Deck.ID, result.Cards, result.Length)
	return nil
}

// validateConfig runs the checks that need a compiled config.
func validateConfig(cfg config.Config) ([]ValidationIssue, deck.Geometry) {
	var issues []ValidationIssue

	g, err := deck.DeriveGeometry(cfg.Deck.CardHeights, cfg.Constants.Gap, cfg.Constants.TopDistance)
	if err != nil {
		field := "deck.cards"
		var de *deck.DeckError
		if errors.As(err, &de) && de.Card >= 0 {
			field = fmt.Sprintf("deck.cards[%d]", de.Card)
		}
		issues = append(issues, ValidationIssue{Code: deckErrorCode(err), Field: field, Message: err.Error()})
	}

	if cfg.Deck.OffsetTop > cfg.Viewport.MaxScroll {
		issues = append(issues, ValidationIssue{
			Code:  ErrCodeUnreachable,
			Field: "deck.offset_top",
			Message: fmt.Sprintf("offset_top %d is beyond viewport.max_scroll %d; the deck can never be reached",
				cfg.Deck.OffsetTop, cfg.Viewport.MaxScroll),
		})
	}

	return issues, g
}

// outputValidationErrors reports issues. Invalid config is exit code 1.
func outputValidationErrors(f *OutputFormatter, issues []ValidationIssue) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))

	if f.JSON() {
		if err := f.Failure(issues[0].Code, issues[0].Message, ValidationResult{Valid: false, Errors: issues}); err != nil {
			return err
		}
		return exitErr
	}

	f.Printf("✗ Validation failed\n\n")
	for _, issue := range issues {
		if issue.Line > 0 {
			f.Printf("line %d\n", issue.Line)
		}
		f.Printf("  %s %s: %s\n\n", issue.Code, issue.Field, issue.Message)
	}
	return exitErr
}

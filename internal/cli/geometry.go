package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/synthscroll/internal/deck"
)

// CardGeometry is one card's derived layout.
type CardGeometry struct {
	Index   int   `json:"index"`
	Height  int64 `json:"height"`
	Initial int64 `json:"initial_translation"`
	Final   int64 `json:"final_translation"`
	Span    int64 `json:"span"`
}

// GeometryResult is the output of the geometry command.
type GeometryResult struct {
	Deck            string         `json:"deck"`
	OffsetTop       int64          `json:"offset_top"`
	AnimationLength int64          `json:"animation_length"`
	Travel          int64          `json:"travel"`
	Cards           []CardGeometry `json:"cards"`
}

// NewGeometryCommand creates the geometry command.
func NewGeometryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "geometry <config-dir>",
		Short: "Print the derived deck geometry",
		Long: `Compile the deck config and print each card's initial and final
translation, the animation length and the total card travel.

Examples:
  synthscroll geometry ./deck
  synthscroll geometry ./deck --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeometry(rootOpts, args[0], cmd)
		},
	}
}

func runGeometry(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	cfg, g, err := LoadDeck(dir)
	if err != nil {
		return loadFailure(f, err)
	}

	result := GeometryResult{
		Deck:            cfg.Deck.ID,
		OffsetTop:       cfg.Deck.OffsetTop,
		AnimationLength: g.AnimationLength,
		Travel:          g.Travel,
		Cards:           cardGeometry(g.Cards),
	}

	if f.JSON() {
		return f.Success(result)
	}

	f.Printf("Deck %q at offset %d\n", result.Deck, result.OffsetTop)
	f.Printf("  animation length %d, card travel %d\n\n", result.AnimationLength, result.Travel)
	f.Printf("  %4s  %6s  %7s  %6s  %5s\n", "card", "height", "initial", "final", "span")
	for _, c := range result.Cards {
		f.Printf("  %4d  %6d  %7d  %6d  %5d\n", c.Index, c.Height, c.Initial, c.Final, c.Span)
	}
	return nil
}

func cardGeometry(cards []deck.Card) []CardGeometry {
	out := make([]CardGeometry, len(cards))
	for i, c := range cards {
		span := c.FinalTranslation - c.InitialTranslation
		if span < 0 {
			span = -span
		}
		out[i] = CardGeometry{
			Index:   c.Index,
			Height:  c.Height,
			Initial: c.InitialTranslation,
			Final:   c.FinalTranslation,
			Span:    span,
		}
	}
	return out
}

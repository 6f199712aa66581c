package deck

import (
	"fmt"
)

// CardStatus is where a card is in its own travel.
type CardStatus int

const (
	// CardIdle means the card rests at its initial translation.
	CardIdle CardStatus = iota
	// CardMoving means the card is between initial and final translation.
	CardMoving
	// CardSettled means the card rests at its final translation.
	CardSettled
)

func (s CardStatus) String() string {
	switch s {
	case CardIdle:
		return "idle"
	case CardMoving:
		return "moving"
	case CardSettled:
		return "settled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Card is one stacked panel. Index, Height, InitialTranslation and
// FinalTranslation never change after construction.
type Card struct {
	Index              int
	Height             int64
	Translation        int64
	InitialTranslation int64
	FinalTranslation   int64
	Status             CardStatus
}

// span is the distance the card travels between its two rest positions.
func (c Card) span() int64 {
	return abs(c.FinalTranslation - c.InitialTranslation)
}

// direction is the sign of the card's forward motion.
func (c Card) direction() int64 {
	if c.FinalTranslation < c.InitialTranslation {
		return -1
	}
	return 1
}

// Geometry is the immutable layout derived from card heights.
type Geometry struct {
	Cards           []Card
	AnimationLength int64
	// Travel is the summed span of every card.
	Travel int64
}

// DeriveGeometry computes rest translations and the animation length.
//
//	initial(0) = 0
//	initial(1) = -2*gap
//	initial(i) = topDistance + initial(i-1) - height(i-1)
//	final(i)   = -(sum(height(k), k<i) + i*(gap-topDistance))
//	length     = sum(height) - (topDistance+gap)*(n-1)
//
// Every card but the last must be at least topDistance-gap tall, so that
// each final translation sits at or above the one before it.
//
// Every card starts at its initial translation, idle.
func DeriveGeometry(heights []int64, gap, topDistance int64) (Geometry, error) {
	if len(heights) == 0 {
		return Geometry{}, &DeckError{Code: ErrCodeEmptyDeck, Message: "deck has no cards", Card: -1}
	}

	cards := make([]Card, len(heights))
	var total int64
	for i, h := range heights {
		if h <= 0 {
			return Geometry{}, &DeckError{
				Code:    ErrCodeInvalidHeight,
				Message: fmt.Sprintf("card height must be positive, got %d", h),
				Card:    i,
			}
		}
		if i < len(heights)-1 && h < topDistance-gap {
			return Geometry{}, &DeckError{
				Code:    ErrCodeInvalidHeight,
				Message: fmt.Sprintf("card height %d is below the stack step %d", h, topDistance-gap),
				Card:    i,
			}
		}

		var initial int64
		switch i {
		case 0:
			initial = 0
		case 1:
			initial = -2 * gap
		default:
			initial = topDistance + cards[i-1].InitialTranslation - heights[i-1]
		}

		final := -(total + int64(i)*(gap-topDistance))

		cards[i] = Card{
			Index:              i,
			Height:             h,
			Translation:        initial,
			InitialTranslation: initial,
			FinalTranslation:   final,
			Status:             CardIdle,
		}
		total += h
	}
	length := total - (topDistance+gap)*int64(len(heights)-1)
	if length <= 0 {
		return Geometry{}, &DeckError{
			Code:    ErrCodeInvalidHeight,
			Message: fmt.Sprintf("cards too short for gap %d and top distance %d: animation length %d", gap, topDistance, length),
			Card:    -1,
		}
	}

	var travel int64
	for _, c := range cards[1:] {
		travel += c.span()
	}

	return Geometry{Cards: cards, AnimationLength: length, Travel: travel}, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

package deck

import (
	"errors"
	"fmt"
)

// DeckError reports an invalid deck description or an unusable message.
type DeckError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Card is the offending card index, or -1.
	Card int
}

// ErrorCode categorizes deck errors.
type ErrorCode string

const (
	// ErrCodeEmptyDeck indicates a deck without cards.
	ErrCodeEmptyDeck ErrorCode = "EMPTY_DECK"

	// ErrCodeInvalidHeight indicates a non-positive card height, a card
	// shorter than the stack step, or cards too short to leave any
	// animation length.
	ErrCodeInvalidHeight ErrorCode = "INVALID_HEIGHT"

	// ErrCodeBadPayload indicates a proposal that could not be decoded.
	ErrCodeBadPayload ErrorCode = "BAD_PAYLOAD"
)

func (e *DeckError) Error() string {
	if e.Card >= 0 {
		return fmt.Sprintf("%s: %s (card=%d)", e.Code, e.Message, e.Card)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsEmptyDeck returns true if err is an EMPTY_DECK error.
func IsEmptyDeck(err error) bool {
	return hasCode(err, ErrCodeEmptyDeck)
}

// IsInvalidHeight returns true if err is an INVALID_HEIGHT error.
func IsInvalidHeight(err error) bool {
	return hasCode(err, ErrCodeInvalidHeight)
}

// IsBadPayload returns true if err is a BAD_PAYLOAD error.
func IsBadPayload(err error) bool {
	return hasCode(err, ErrCodeBadPayload)
}

func hasCode(err error, code ErrorCode) bool {
	var de *DeckError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

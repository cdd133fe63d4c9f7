package engine

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned when a card is moved to a state it cannot reach
var ErrIllegalTransition = errors.New("illegal card transition")

// CardFace is the visible state of a card
type CardFace string

const (
	FaceDown CardFace = "face_down"
	FaceUp   CardFace = "face_up"
	Matched  CardFace = "matched"
)

// Face returns the current face of the slot
func (c *CardSlot) Face() CardFace {
	switch {
	case c.Matched:
		return Matched
	case c.FaceUp:
		return FaceUp
	default:
		return FaceDown
	}
}

// Selectable reports whether the card itself allows a flip. The session
// phase is checked separately by the engine.
func (c *CardSlot) Selectable() bool {
	return !c.Matched && !c.FaceUp
}

// Select flips a face-down card face up
func (c *CardSlot) Select() error {
	if !c.Selectable() {
		return fmt.Errorf("%w: select card %d while %s", ErrIllegalTransition, c.Index, c.Face())
	}
	c.FaceUp = true
	return nil
}

// Revert flips a face-up, unmatched card back down
func (c *CardSlot) Revert() error {
	if !c.FaceUp || c.Matched {
		return fmt.Errorf("%w: revert card %d while %s", ErrIllegalTransition, c.Index, c.Face())
	}
	c.FaceUp = false
	return nil
}

// ConfirmMatch retires a face-up card. Matched is terminal.
func (c *CardSlot) ConfirmMatch() error {
	if !c.FaceUp || c.Matched {
		return fmt.Errorf("%w: confirm match on card %d while %s", ErrIllegalTransition, c.Index, c.Face())
	}
	c.Matched = true
	return nil
}

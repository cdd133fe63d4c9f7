package engine

import (
	"errors"
	"testing"
)

func TestCardTransitions(t *testing.T) {
	card := CardSlot{Index: 3, PairID: 1}
	if card.Face() != FaceDown || !card.Selectable() {
		t.Fatal("New card should be face down and selectable")
	}

	if err := card.Select(); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if card.Face() != FaceUp {
		t.Errorf("Expected face up, got %s", card.Face())
	}
	if err := card.Select(); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("Selecting a face-up card should fail, got %v", err)
	}

	if err := card.Revert(); err != nil {
		t.Fatalf("Revert failed: %v", err)
	}
	if card.Face() != FaceDown {
		t.Errorf("Expected face down after revert, got %s", card.Face())
	}
	if err := card.Revert(); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("Reverting a face-down card should fail, got %v", err)
	}
	if err := card.ConfirmMatch(); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("Matching a face-down card should fail, got %v", err)
	}
}

func TestMatchedIsTerminal(t *testing.T) {
	card := CardSlot{}
	_ = card.Select()
	if err := card.ConfirmMatch(); err != nil {
		t.Fatalf("ConfirmMatch failed: %v", err)
	}
	if card.Face() != Matched || card.Selectable() {
		t.Fatal("Matched card must not be selectable")
	}

	for name, op := range map[string]func() error{
		"select":  card.Select,
		"revert":  card.Revert,
		"confirm": card.ConfirmMatch,
	} {
		if err := op(); !errors.Is(err, ErrIllegalTransition) {
			t.Errorf("%s on matched card: expected ErrIllegalTransition, got %v", name, err)
		}
	}
	if card.Face() != Matched {
		t.Error("Matched card changed state")
	}
}

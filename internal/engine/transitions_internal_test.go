package engine

import (
	"fmt"
	"testing"
)

// testCard mints a well-formed card with a predictable id.
func testCard(n int, suit, rank string) Card {
	return Card{ID: fmt.Sprintf("c%012d", n), Suit: suit, Rank: rank}
}

func craftedState(order []string, hands map[string][]Card, deck, pile []Card) *State {
	return &State{
		rng:       NewRand("crafted"),
		Finishers: []string{},
		Order:     order,
		Turn:      0,
		Deck:      deck,
		Pile:      pile,
		Hands:     hands,
	}
}

func TestDrawReshufflesPileIntoDeck(t *testing.T) {
	pile := []Card{
		testCard(1, "♠", "2"),
		testCard(2, "♣", "3"),
		testCard(3, "♥", "4"),
		testCard(4, "♦", "5"), // top, must stay on the pile
	}
	s := craftedState(
		[]string{"alice", "bob"},
		map[string][]Card{
			"alice": {testCard(5, "♠", "6")},
			"bob":   {testCard(6, "♣", "7")},
		},
		nil,
		pile,
	)
	total := s.CardCount()

	if err := s.Draw("alice"); err != nil {
		t.Fatalf("draw failed: %v", err)
	}

	if len(s.Pile) != 1 || s.Pile[0].ID != testCard(4, "♦", "5").ID {
		t.Fatalf("top of pile not preserved: %+v", s.Pile)
	}
	// Three pile cards reshuffled, one drawn.
	if len(s.Deck) != 2 {
		t.Fatalf("expected 2 deck cards after reshuffle and draw, got %d", len(s.Deck))
	}
	if len(s.Hands["alice"]) != 2 {
		t.Fatalf("expected alice to hold 2 cards, got %d", len(s.Hands["alice"]))
	}
	if got := s.CardCount(); got != total {
		t.Fatalf("card count changed: %d -> %d", total, got)
	}
	if s.Turn != 1 {
		t.Fatalf("expected turn 1, got %d", s.Turn)
	}
}

func TestDrawBlockedWhenDeckAndPileExhausted(t *testing.T) {
	s := craftedState(
		[]string{"alice", "bob"},
		map[string][]Card{
			"alice": {testCard(1, "♠", "2")},
			"bob":   {testCard(2, "♣", "3")},
		},
		nil,
		[]Card{testCard(3, "♥", "4")},
	)

	err := s.Draw("alice")
	if KindOf(err) != KindState {
		t.Fatalf("expected state error, got %v", err)
	}
	if err.Error() != "the deck is empty and the pile has no cards to shuffle" {
		t.Fatalf("unexpected reason: %q", err.Error())
	}
	if len(s.Pile) != 1 || len(s.Deck) != 0 || s.Turn != 0 || len(s.Hands["alice"]) != 1 {
		t.Fatalf("state changed on blocked draw")
	}
}

func TestPlayCardNotInHand(t *testing.T) {
	s := craftedState(
		[]string{"alice", "bob"},
		map[string][]Card{
			"alice": {testCard(1, "♠", "2")},
			"bob":   {testCard(2, "♠", "3")},
		},
		nil,
		[]Card{testCard(3, "♠", "4")},
	)

	// Bob's card, dispatched by alice.
	err := s.Play("alice", testCard(2, "♠", "3").ID)
	if KindOf(err) != KindState {
		t.Fatalf("expected state error, got %v", err)
	}
	if len(s.Pile) != 1 || len(s.Hands["alice"]) != 1 {
		t.Fatalf("state changed on rejected play")
	}
}

func TestPlaySuitAndRankBothDiffer(t *testing.T) {
	s := craftedState(
		[]string{"alice", "bob"},
		map[string][]Card{
			"alice": {testCard(1, "♣", "9")},
			"bob":   {testCard(2, "♠", "3")},
		},
		nil,
		[]Card{testCard(3, "♠", "4")},
	)

	err := s.Play("alice", testCard(1, "♣", "9").ID)
	if KindOf(err) != KindState {
		t.Fatalf("expected state error, got %v", err)
	}
	if err.Error() != "the card cannot be played" {
		t.Fatalf("unexpected reason: %q", err.Error())
	}
	if len(s.Pile) != 1 || len(s.Hands["alice"]) != 1 {
		t.Fatalf("state changed on rejected play")
	}
}

func TestPlayMatchingSuit(t *testing.T) {
	played := testCard(1, "♠", "9")
	s := craftedState(
		[]string{"alice", "bob"},
		map[string][]Card{
			"alice": {played, testCard(2, "♥", "J")},
			"bob":   {testCard(3, "♠", "3")},
		},
		nil,
		[]Card{testCard(4, "♠", "4")},
	)

	if err := s.Play("alice", played.ID); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if len(s.Pile) != 2 || s.Pile[1].ID != played.ID {
		t.Fatalf("card not pushed to pile: %+v", s.Pile)
	}
	if len(s.Hands["alice"]) != 1 {
		t.Fatalf("card not removed from hand")
	}
	if s.Turn != 1 {
		t.Fatalf("expected turn 1, got %d", s.Turn)
	}
}

func TestPlayEliminationKeepsGameGoing(t *testing.T) {
	last := testCard(1, "♥", "4")
	s := craftedState(
		[]string{"alice", "bob", "carol"},
		map[string][]Card{
			"alice": {last},
			"bob":   {testCard(2, "♠", "3"), testCard(3, "♣", "5")},
			"carol": {testCard(4, "♦", "6"), testCard(5, "♦", "7")},
		},
		[]Card{testCard(6, "♠", "8")},
		[]Card{testCard(7, "♥", "9")},
	)

	if err := s.Play("alice", last.ID); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if len(s.Finishers) != 1 || s.Finishers[0] != "alice" {
		t.Fatalf("expected finishers [alice], got %v", s.Finishers)
	}
	if len(s.Order) != 2 {
		t.Fatalf("expected 2 players left, got %v", s.Order)
	}
	for _, p := range s.Order {
		if p == "alice" {
			t.Fatalf("alice still in order: %v", s.Order)
		}
	}
	// Alice sat at index 0 with the turn; play skips to the next still-active
	// player after the removed slot, which is bob.
	if s.Order[s.Turn] != "bob" {
		t.Fatalf("expected bob to act next, got %s", s.Order[s.Turn])
	}
	if hand, ok := s.Hands["alice"]; !ok || len(hand) != 0 {
		t.Fatalf("finisher hand entry not retained as empty: %v", s.Hands)
	}
}

func TestPlayLastTwoPlayersEndsGame(t *testing.T) {
	last := testCard(1, "♥", "4")
	s := craftedState(
		[]string{"alice", "bob"},
		map[string][]Card{
			"alice": {last},
			"bob":   {testCard(2, "♠", "3")},
		},
		[]Card{testCard(3, "♠", "8")},
		[]Card{testCard(4, "♥", "9")},
	)

	if err := s.Play("alice", last.ID); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if !s.Over() {
		t.Fatalf("expected game over")
	}
	if len(s.Order) != 0 {
		t.Fatalf("expected empty order, got %v", s.Order)
	}
	if s.Turn != 0 {
		t.Fatalf("expected turn reset to 0, got %d", s.Turn)
	}
	want := []string{"alice", "bob"}
	if len(s.Finishers) != 2 || s.Finishers[0] != want[0] || s.Finishers[1] != want[1] {
		t.Fatalf("expected finishers %v, got %v", want, s.Finishers)
	}

	// Terminal state: no further turns possible.
	if err := s.Draw("bob"); KindOf(err) != KindAuthorization {
		t.Fatalf("expected authorization error after game over, got %v", err)
	}
}

func TestPlayEliminationMidOrder(t *testing.T) {
	last := testCard(1, "♥", "4")
	s := craftedState(
		[]string{"bob", "alice", "carol"},
		map[string][]Card{
			"alice": {last},
			"bob":   {testCard(2, "♠", "3"), testCard(3, "♣", "5")},
			"carol": {testCard(4, "♦", "6"), testCard(5, "♦", "7")},
		},
		[]Card{testCard(6, "♠", "8")},
		[]Card{testCard(7, "♥", "9")},
	)
	s.Turn = 1 // alice

	if err := s.Play("alice", last.ID); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	// Remaining order is [bob, carol]; the slot after alice's belongs to carol.
	if s.Order[s.Turn] != "carol" {
		t.Fatalf("expected carol to act next, got %s", s.Order[s.Turn])
	}
}

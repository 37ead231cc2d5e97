package engine_test

import (
	"reflect"
	"testing"

	"cardroom/internal/engine"
)

func mustStart(t *testing.T, payload engine.StartPayload) *engine.State {
	t.Helper()
	s, err := engine.Start(engine.Root, payload)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return s
}

func abPayload() engine.StartPayload {
	return engine.StartPayload{Seed: "abc", Players: []string{"alice", "bob"}, HandSize: 3}
}

func TestStartWorkedExample(t *testing.T) {
	// 2*(3+5)+1 = 17 cards required, one 52-card deck built.
	s := mustStart(t, abPayload())

	if got := s.CardCount(); got != 52 {
		t.Fatalf("expected 52 cards total, got %d", got)
	}
	if len(s.Pile) != 1 {
		t.Fatalf("expected 1 pile card, got %d", len(s.Pile))
	}
	if len(s.Deck) != 45 {
		t.Fatalf("expected 45 deck cards, got %d", len(s.Deck))
	}
	for _, player := range []string{"alice", "bob"} {
		if len(s.Hands[player]) != 3 {
			t.Fatalf("expected 3 cards for %s, got %d", player, len(s.Hands[player]))
		}
	}
	if s.Turn != 0 {
		t.Fatalf("expected turn 0, got %d", s.Turn)
	}
	if len(s.Order) != 2 {
		t.Fatalf("expected 2 players in order, got %d", len(s.Order))
	}
	if len(s.Finishers) != 0 {
		t.Fatalf("expected no finishers, got %v", s.Finishers)
	}
}

func TestStartCardIDsUnique(t *testing.T) {
	s := mustStart(t, engine.StartPayload{
		Seed:     "many-decks",
		Players:  []string{"a1", "a2", "a3", "a4", "a5", "a6"},
		HandSize: 10,
	})

	// 6*(10+5)+1 = 91 required, two decks built.
	if got := s.CardCount(); got != 104 {
		t.Fatalf("expected 104 cards total, got %d", got)
	}

	seen := make(map[string]struct{}, s.CardCount())
	check := func(cards []engine.Card) {
		for _, card := range cards {
			if !engine.ValidCardID(card.ID) {
				t.Fatalf("malformed card id %q", card.ID)
			}
			if _, dup := seen[card.ID]; dup {
				t.Fatalf("duplicate card id %q", card.ID)
			}
			seen[card.ID] = struct{}{}
		}
	}
	check(s.Deck)
	check(s.Pile)
	for _, hand := range s.Hands {
		check(hand)
	}
}

func TestStartDeterminism(t *testing.T) {
	a := mustStart(t, abPayload())
	b := mustStart(t, abPayload())

	if !reflect.DeepEqual(a.Order, b.Order) {
		t.Fatalf("orders differ: %v vs %v", a.Order, b.Order)
	}
	if !reflect.DeepEqual(a.Deck, b.Deck) {
		t.Fatalf("decks differ")
	}
	if !reflect.DeepEqual(a.Pile, b.Pile) {
		t.Fatalf("piles differ")
	}
	if !reflect.DeepEqual(a.Hands, b.Hands) {
		t.Fatalf("hands differ")
	}

	c := mustStart(t, engine.StartPayload{Seed: "abd", Players: []string{"alice", "bob"}, HandSize: 3})
	if reflect.DeepEqual(a.Deck, c.Deck) {
		t.Fatalf("different seeds produced identical decks")
	}
}

func TestStartAuthorization(t *testing.T) {
	_, err := engine.Start("alice", abPayload())
	if engine.KindOf(err) != engine.KindAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestStartValidation(t *testing.T) {
	cases := []struct {
		name    string
		payload engine.StartPayload
	}{
		{"short seed", engine.StartPayload{Seed: "ab", Players: []string{"alice", "bob"}, HandSize: 3}},
		{"one player", engine.StartPayload{Seed: "abc", Players: []string{"alice"}, HandSize: 3}},
		{"duplicate players", engine.StartPayload{Seed: "abc", Players: []string{"alice", "alice"}, HandSize: 3}},
		{"hand too small", engine.StartPayload{Seed: "abc", Players: []string{"alice", "bob"}, HandSize: 2}},
		{"hand too large", engine.StartPayload{Seed: "abc", Players: []string{"alice", "bob"}, HandSize: 11}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Start(engine.Root, tc.payload)
			if engine.KindOf(err) != engine.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDrawAdvancesTurnAndConservesCards(t *testing.T) {
	s := mustStart(t, abPayload())
	total := s.CardCount()

	current := s.Order[0]
	deckBefore := len(s.Deck)
	handBefore := len(s.Hands[current])

	if err := s.Draw(current); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if len(s.Deck) != deckBefore-1 {
		t.Fatalf("deck did not shrink: %d -> %d", deckBefore, len(s.Deck))
	}
	if len(s.Hands[current]) != handBefore+1 {
		t.Fatalf("hand did not grow: %d -> %d", handBefore, len(s.Hands[current]))
	}
	if s.Turn != 1 {
		t.Fatalf("expected turn 1, got %d", s.Turn)
	}
	if got := s.CardCount(); got != total {
		t.Fatalf("card count changed: %d -> %d", total, got)
	}
}

func TestDrawTurnEnforcement(t *testing.T) {
	s := mustStart(t, abPayload())

	notCurrent := s.Order[1]
	deckBefore := len(s.Deck)
	turnBefore := s.Turn

	err := s.Draw(notCurrent)
	if engine.KindOf(err) != engine.KindAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if len(s.Deck) != deckBefore || s.Turn != turnBefore {
		t.Fatalf("state changed on rejected draw")
	}

	if err := s.Draw("mallory"); engine.KindOf(err) != engine.KindAuthorization {
		t.Fatalf("expected authorization error for stranger, got %v", err)
	}
}

func TestPlayTurnEnforcement(t *testing.T) {
	s := mustStart(t, abPayload())

	notCurrent := s.Order[1]
	cardID := s.Hands[notCurrent][0].ID

	err := s.Play(notCurrent, cardID)
	if engine.KindOf(err) != engine.KindAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if len(s.Hands[notCurrent]) != 3 || len(s.Pile) != 1 {
		t.Fatalf("state changed on rejected play")
	}
}

func TestPlayMalformedCardID(t *testing.T) {
	s := mustStart(t, abPayload())

	for _, id := range []string{"", "c123", "x123456789012", "c1234567890123"} {
		if err := s.Play(s.Order[0], id); engine.KindOf(err) != engine.KindValidation {
			t.Fatalf("expected validation error for %q, got %v", id, err)
		}
	}
}

func TestTurnBoundInvariant(t *testing.T) {
	s := mustStart(t, engine.StartPayload{
		Seed:     "rotation",
		Players:  []string{"alice", "bob", "carol"},
		HandSize: 3,
	})

	for i := 0; i < 20; i++ {
		if s.Turn < 0 || s.Turn >= len(s.Order) {
			t.Fatalf("turn %d out of bounds for order of %d", s.Turn, len(s.Order))
		}
		if err := s.Draw(s.Order[s.Turn]); err != nil {
			t.Fatalf("draw %d failed: %v", i, err)
		}
	}
}

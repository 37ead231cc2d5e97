package engine

import "fmt"

// HandCount exposes how many cards a participant holds without revealing
// which ones.
type HandCount struct {
	Participant string `json:"participant"`
	HandSize    int    `json:"handSize"`
}

// View is what a single viewer is allowed to see: full pile and own hand,
// only counts for everyone else. Turn is nil while a speculative patch is in
// flight and the real turn is not yet known.
type View struct {
	Finishers []string    `json:"finishers"`
	Order     []string    `json:"order"`
	Turn      *int        `json:"turn"`
	DeckSize  int         `json:"deckSize"`
	Pile      []Card      `json:"pile"`
	Hands     []HandCount `json:"hands"`
	Hand      []Card      `json:"hand"`
}

// Project derives viewer's view of the state. It is a pure function: holding
// no state of its own, it may be re-run at any time and always overwrites any
// speculative patch the viewer applied locally.
func (s *State) Project(viewer string) View {
	turn := s.Turn
	view := View{
		Finishers: append([]string(nil), s.Finishers...),
		Order:     append([]string(nil), s.Order...),
		Turn:      &turn,
		DeckSize:  len(s.Deck),
		Pile:      append([]Card(nil), s.Pile...),
		Hands:     make([]HandCount, 0, len(s.Hands)),
		Hand:      []Card{},
	}
	for _, participant := range s.handOrder() {
		view.Hands = append(view.Hands, HandCount{
			Participant: participant,
			HandSize:    len(s.Hands[participant]),
		})
	}
	if hand, ok := s.Hands[viewer]; ok {
		view.Hand = append(view.Hand, hand...)
	}
	return view
}

// handOrder lists every participant with a hand entry in a stable order:
// active players first in rotation order, then finishers in finish order.
func (s *State) handOrder() []string {
	out := make([]string, 0, len(s.Hands))
	out = append(out, s.Order...)
	for _, finisher := range s.Finishers {
		if _, ok := s.Hands[finisher]; ok {
			out = append(out, finisher)
		}
	}
	return out
}

// PatchDrawView is the speculative local adjustment a client applies right
// after dispatching a draw: the turn becomes indeterminate, the deck shrinks
// by one, and a placeholder of unknown suit and rank stands in for the drawn
// card so the client cannot learn deck contents ahead of the server. The next
// authoritative projection replaces all of it.
func PatchDrawView(view View) View {
	view.Turn = nil
	view.DeckSize--
	view.Hand = append(view.Hand, Card{
		ID:   fmt.Sprintf("c?%d", len(view.Hand)),
		Suit: "?",
		Rank: "?",
	})
	return view
}

// PatchPlayView marks only the turn as indeterminate; a played card is public
// so there is nothing else worth guessing.
func PatchPlayView(view View) View {
	view.Turn = nil
	return view
}

package engine

// Root is the distinguished system identity allowed to start games. It is not
// a valid username, so a connected player can never dispatch as it.
const Root = "<root>"

// State is the authoritative record of one game instance. Exactly one exists
// per live game; the owner must serialize transitions, the engine itself does
// no locking and no I/O.
//
// Invariants after every transition:
//   - the total card count across deck, pile and hands never changes after Start
//   - card ids are pairwise distinct
//   - 0 <= Turn < len(Order) whenever Order is non-empty
//   - Order holds exactly the players still in the game; finishers never return
//   - Finishers grows by append only
type State struct {
	rng *Rand

	Finishers []string
	Order     []string
	Turn      int
	Deck      []Card
	Pile      []Card
	Hands     map[string][]Card
}

// CardCount is the number of cards across deck, pile and all hands. Constant
// for the lifetime of a started game.
func (s *State) CardCount() int {
	n := len(s.Deck) + len(s.Pile)
	for _, hand := range s.Hands {
		n += len(hand)
	}
	return n
}

// Over reports whether the game has ended: everyone finished and the turn
// order is empty.
func (s *State) Over() bool {
	return len(s.Order) == 0
}

// current returns the identity whose turn it is, or "" when the game is over.
func (s *State) current() string {
	if len(s.Order) == 0 {
		return ""
	}
	return s.Order[s.Turn]
}

// popDeck removes and returns the top (back) card of the deck. The caller is
// responsible for having checked that the deck is non-empty.
func (s *State) popDeck() (Card, bool) {
	if len(s.Deck) == 0 {
		return Card{}, false
	}
	card := s.Deck[len(s.Deck)-1]
	s.Deck = s.Deck[:len(s.Deck)-1]
	return card, true
}

// topOfPile returns the currently playable card.
func (s *State) topOfPile() (Card, bool) {
	if len(s.Pile) == 0 {
		return Card{}, false
	}
	return s.Pile[len(s.Pile)-1], true
}

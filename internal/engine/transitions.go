package engine

// StartPayload configures a new game.
type StartPayload struct {
	Seed     string   `json:"seed"`
	Players  []string `json:"players"`
	HandSize int      `json:"handSize"`
}

const (
	minSeedLen  = 3
	minPlayers  = 2
	minHandSize = 3
	maxHandSize = 10
	// Each player gets their starting hand plus headroom of five deck cards,
	// and one card seeds the pile. Rounding up to whole decks leaves a margin
	// so the deck essentially never runs dry before a reshuffle.
	extraPerPlayer = 5
	deckSize       = 52
)

// Start builds a fresh authoritative state from the payload, replacing any
// prior game. Only Root may dispatch it.
func Start(dispatcher string, payload StartPayload) (*State, error) {
	if dispatcher != Root {
		return nil, authorizationErr("only the server can start the game")
	}
	if len(payload.Seed) < minSeedLen {
		return nil, validationErr("seed must be at least 3 characters")
	}
	if len(payload.Players) < minPlayers {
		return nil, validationErr("at least 2 players are required")
	}
	seen := make(map[string]struct{}, len(payload.Players))
	for _, p := range payload.Players {
		if _, dup := seen[p]; dup {
			return nil, validationErr("players must be distinct")
		}
		seen[p] = struct{}{}
	}
	if payload.HandSize < minHandSize || payload.HandSize > maxHandSize {
		return nil, validationErr("hand size must be between 3 and 10")
	}

	s := &State{
		rng:       NewRand(payload.Seed),
		Finishers: []string{},
		Turn:      0,
	}

	// Turn order is randomized; dealing below follows payload order. The two
	// are deliberately independent.
	s.Order = s.rng.ShuffleStrings(payload.Players)

	required := len(payload.Players)*(payload.HandSize+extraPerPlayer) + 1
	numDecks := (required + deckSize - 1) / deckSize
	s.Deck = s.rng.Shuffle(buildDecks(s.rng, numDecks))

	first, _ := s.popDeck()
	s.Pile = []Card{first}

	s.Hands = make(map[string][]Card, len(payload.Players))
	for _, player := range payload.Players {
		hand := make([]Card, 0, payload.HandSize)
		for i := 0; i < payload.HandSize; i++ {
			card, _ := s.popDeck()
			hand = append(hand, card)
		}
		s.Hands[player] = hand
	}

	return s, nil
}

// Draw moves one card from the deck into the dispatcher's hand and ends
// their turn, reshuffling the pile into a fresh deck first if needed.
func (s *State) Draw(dispatcher string) error {
	if dispatcher != s.current() {
		return authorizationErr("it is not your turn")
	}

	if len(s.Deck) == 0 {
		if len(s.Pile) < 2 {
			// Blocked draw: the game is only playable through Play until the
			// pile grows. See DESIGN.md for the policy decision.
			return stateErr("the deck is empty and the pile has no cards to shuffle")
		}
		top := s.Pile[len(s.Pile)-1]
		rest := s.Pile[:len(s.Pile)-1]
		s.Deck = s.rng.Shuffle(rest)
		s.Pile = []Card{top}
	}

	card, _ := s.popDeck()
	s.Hands[dispatcher] = append(s.Hands[dispatcher], card)

	s.Turn = (s.Turn + 1) % len(s.Order)
	return nil
}

// Play moves the identified card from the dispatcher's hand onto the pile.
// Emptying a hand removes the dispatcher from the turn order and records them
// as a finisher; when only one player remains the game ends.
func (s *State) Play(dispatcher, cardID string) error {
	if !ValidCardID(cardID) {
		return validationErr("malformed card id")
	}
	if dispatcher != s.current() {
		return authorizationErr("it is not your turn")
	}

	hand := s.Hands[dispatcher]
	cardIndex := -1
	for i, card := range hand {
		if card.ID == cardID {
			cardIndex = i
			break
		}
	}
	if cardIndex == -1 {
		return stateErr("the card is not in your hand")
	}

	top, ok := s.topOfPile()
	if !ok || !hand[cardIndex].Matches(top) {
		return stateErr("the card cannot be played")
	}

	card := hand[cardIndex]
	hand = append(hand[:cardIndex], hand[cardIndex+1:]...)
	s.Hands[dispatcher] = hand
	s.Pile = append(s.Pile, card)

	if len(hand) > 0 {
		s.Turn = (s.Turn + 1) % len(s.Order)
		return nil
	}

	// The dispatcher finished. Drop them from the order, keeping everyone
	// else's relative position.
	playerIndex := -1
	for i, p := range s.Order {
		if p == dispatcher {
			playerIndex = i
			break
		}
	}
	s.Order = append(s.Order[:playerIndex], s.Order[playerIndex+1:]...)
	s.Finishers = append(s.Finishers, dispatcher)

	if len(s.Order) == 1 {
		// The last player standing finishes last and the game is over.
		s.Finishers = append(s.Finishers, s.Order[0])
		s.Order = nil
		s.Turn = 0
		return nil
	}

	// Compensate for the removed slot, then move to the next player.
	if s.Turn >= playerIndex {
		s.Turn = (s.Turn - 1 + len(s.Order)) % len(s.Order)
	}
	s.Turn = (s.Turn + 1) % len(s.Order)
	return nil
}

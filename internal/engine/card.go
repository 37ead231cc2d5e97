package engine

// Suits and Ranks define the fixed 52-card universe. A multi-deck game simply
// repeats the full universe, each copy with fresh card ids.
var (
	Suits = []string{"♠", "♣", "♥", "♦"}
	Ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
)

const (
	// Card ids are "c" followed by cardIDRandLen characters from the shuffler.
	cardIDPrefix  = "c"
	cardIDRandLen = 12
	// CardIDLen is the total length of a well-formed card id.
	CardIDLen = len(cardIDPrefix) + cardIDRandLen
)

// Card is a single card instance. Ids are minted once at deck construction
// and never reused within a game.
type Card struct {
	ID   string `json:"id"`
	Suit string `json:"suit"`
	Rank string `json:"rank"`
}

// Matches reports whether c may be played on top of other under
// match-suit-or-rank rules.
func (c Card) Matches(other Card) bool {
	return c.Suit == other.Suit || c.Rank == other.Rank
}

// ValidCardID reports whether id has the shape produced at deal time.
func ValidCardID(id string) bool {
	if len(id) != CardIDLen {
		return false
	}
	return id[:len(cardIDPrefix)] == cardIDPrefix
}

// buildDecks mints count full 52-card decks, drawing every id from r.
func buildDecks(r *Rand, count int) []Card {
	cards := make([]Card, 0, count*len(Suits)*len(Ranks))
	for d := 0; d < count; d++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				cards = append(cards, Card{
					ID:   cardIDPrefix + r.String(cardIDRandLen),
					Suit: suit,
					Rank: rank,
				})
			}
		}
	}
	return cards
}

package game

// HandValue totals visible cards, demoting aces from 11 to 1 while the
// total exceeds 21. Hidden cards count zero.
func HandValue(cards []Card) int {
	total, aces := 0, 0
	for _, c := range cards {
		if c.Hidden {
			continue
		}
		total += c.Points()
		if c.Rank == Ace {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

func reveal(cards []Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		c.Hidden = false
		out[i] = c
	}
	return out
}

func cardStrings(cards []Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}

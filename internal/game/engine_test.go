package game

import (
	"errors"
	"math/rand"
	"testing"
)

type testWallet struct {
	money    float64
	lifetime float64
	wins     int
}

func (w *testWallet) Balance() float64     { return w.money }
func (w *testWallet) Debit(amount float64) { w.money -= amount }
func (w *testWallet) CreditSettlement(s Settlement) {
	w.money += s.Payout
	w.lifetime += s.Profit()
	if s.Won() {
		w.wins++
	}
}

func c(r Rank) Card { return Card{Rank: r, Suit: Spades} }

func stackedTable(cards ...Card) *Table {
	return NewTable(TableOptions{NewDeck: func() *Deck { return StackedDeck(cards...) }})
}

func TestHandValue(t *testing.T) {
	cases := []struct {
		name  string
		cards []Card
		want  int
	}{
		{"two aces", []Card{c(Ace), c(Ace)}, 12},
		{"faces", []Card{c(King), c(Queen)}, 20},
		{"ace demoted", []Card{c(Ace), c(King), c(Queen)}, 21},
		{"soft", []Card{c(Ace), c(Six)}, 17},
		{"hidden ignored", []Card{c(Ten), {Rank: Nine, Hidden: true}}, 10},
		{"empty", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HandValue(tc.cards); got != tc.want {
				t.Fatalf("HandValue = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDealOrderAndHiddenCard(t *testing.T) {
	table := stackedTable(c(Two), c(Three), c(Four), c(Five), c(Six))
	w := &testWallet{money: 100}
	snap, err := table.Deal(w, 10)
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	if snap.PlayerValue != 5 || snap.DealerValue != 4 {
		t.Fatalf("unexpected values player=%d dealer=%d", snap.PlayerValue, snap.DealerValue)
	}
	if snap.DealerCards[1] != "??" {
		t.Fatalf("hole card should be hidden, got %v", snap.DealerCards)
	}
	if w.money != 90 {
		t.Fatalf("bet not escrowed, money=%v", w.money)
	}
	if snap.Phase != PhasePlayerTurn {
		t.Fatalf("phase = %s", snap.Phase)
	}
}

func TestSettlementPayouts(t *testing.T) {
	cases := []struct {
		name     string
		deck     []Card
		stand    bool
		result   Result
		money    float64
		lifetime float64
		wins     int
	}{
		{
			name:  "win on stand",
			deck:  []Card{c(King), c(Queen), c(Ten), c(Seven)},
			stand: true, result: ResultWin, money: 1100, lifetime: 100, wins: 1,
		},
		{
			name:  "push on stand",
			deck:  []Card{c(King), c(Queen), c(Ten), c(King)},
			stand: true, result: ResultPush, money: 1000, lifetime: 0, wins: 0,
		},
		{
			name:  "lose on stand",
			deck:  []Card{c(King), c(Seven), c(Ten), c(Nine)},
			stand: true, result: ResultLose, money: 900, lifetime: 0, wins: 0,
		},
		{
			name:   "natural blackjack",
			deck:   []Card{c(Ace), c(King), c(Nine), c(Seven)},
			result: ResultBlackjack, money: 1150, lifetime: 150, wins: 1,
		},
		{
			name:   "natural against dealer 21",
			deck:   []Card{c(Ace), c(King), c(Ace), c(Queen)},
			result: ResultPush, money: 1000, lifetime: 0, wins: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := stackedTable(tc.deck...)
			w := &testWallet{money: 1000}
			snap, err := table.Deal(w, 100)
			if err != nil {
				t.Fatalf("deal: %v", err)
			}
			if tc.stand {
				if snap, err = table.Stand(w); err != nil {
					t.Fatalf("stand: %v", err)
				}
			}
			if snap.Result != tc.result || snap.Phase != PhaseSettled {
				t.Fatalf("result=%s phase=%s, want %s settled", snap.Result, snap.Phase, tc.result)
			}
			if w.money != tc.money || w.lifetime != tc.lifetime || w.wins != tc.wins {
				t.Fatalf("wallet money=%v lifetime=%v wins=%d", w.money, w.lifetime, w.wins)
			}
			for _, card := range snap.DealerCards {
				if card == "??" {
					t.Fatalf("dealer cards not revealed: %v", snap.DealerCards)
				}
			}
		})
	}
}

func TestHitBustLoses(t *testing.T) {
	table := stackedTable(c(King), c(Six), c(Ten), c(Seven), c(Nine))
	w := &testWallet{money: 50}
	if _, err := table.Deal(w, 50); err != nil {
		t.Fatalf("deal: %v", err)
	}
	snap, err := table.Hit(w)
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	if snap.Result != ResultLose || w.money != 0 {
		t.Fatalf("expected bust loss, result=%s money=%v", snap.Result, w.money)
	}
	if _, err := table.Hit(w); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("hit after settle: expected ErrInvalidAction, got %v", err)
	}
}

func TestDealerDrawsToSeventeen(t *testing.T) {
	table := stackedTable(c(King), c(Nine), c(Two), c(Three), c(Four), c(Two), c(Ace), c(King))
	w := &testWallet{money: 100}
	if _, err := table.Deal(w, 10); err != nil {
		t.Fatalf("deal: %v", err)
	}
	snap, err := table.Stand(w)
	if err != nil {
		t.Fatalf("stand: %v", err)
	}
	// 2+3+4+2 = 11, the ace counts low at 12, the king busts at 22.
	if snap.DealerValue < DealerStandsOn {
		t.Fatalf("dealer stopped at %d", snap.DealerValue)
	}
	if len(snap.DealerDraws) == 0 {
		t.Fatalf("expected dealer draws to be reported")
	}
}

func TestDealerStopsWhenDeckEmpty(t *testing.T) {
	table := stackedTable(c(King), c(Nine), c(Two), c(Three))
	w := &testWallet{money: 100}
	if _, err := table.Deal(w, 10); err != nil {
		t.Fatalf("deal: %v", err)
	}
	snap, err := table.Stand(w)
	if err != nil {
		t.Fatalf("stand: %v", err)
	}
	if snap.Result != ResultWin || snap.DealerValue != 5 {
		t.Fatalf("result=%s dealer=%d", snap.Result, snap.DealerValue)
	}
}

func TestDealRejections(t *testing.T) {
	table := NewTable(TableOptions{Rand: rand.New(rand.NewSource(7))})
	broke := &testWallet{}
	if _, err := table.Deal(broke, 100); !errors.Is(err, ErrInvalidBet) {
		t.Fatalf("zero balance: expected ErrInvalidBet, got %v", err)
	}
	w := &testWallet{money: 10}
	if _, err := table.Deal(w, -5); !errors.Is(err, ErrInvalidBet) {
		t.Fatalf("negative bet: expected ErrInvalidBet, got %v", err)
	}
	if w.money != 10 {
		t.Fatalf("rejected bet changed money: %v", w.money)
	}
	if _, err := table.Stand(w); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("stand while idle: expected ErrInvalidAction, got %v", err)
	}
}

func TestDealClampsBetToBalance(t *testing.T) {
	table := stackedTable(c(King), c(Seven), c(Ten), c(Nine))
	w := &testWallet{money: 40}
	snap, err := table.Deal(w, 1000)
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	if snap.Bet != 40 || w.money != 0 {
		t.Fatalf("bet=%v money=%v", snap.Bet, w.money)
	}
	if _, err := table.Deal(w, 10); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("deal mid-round: expected ErrInvalidAction, got %v", err)
	}
}

func TestShuffledDeckIsComplete(t *testing.T) {
	d := NewDeck()
	d.Shuffle(rand.New(rand.NewSource(42)))
	seen := map[string]bool{}
	for {
		card, ok := d.Deal()
		if !ok {
			break
		}
		seen[card.String()] = true
	}
	if len(seen) != 52 {
		t.Fatalf("expected 52 distinct cards, got %d", len(seen))
	}
}

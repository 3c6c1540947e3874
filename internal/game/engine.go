package game

import (
	"math"
	"math/rand"
)

// Wallet is the balance a table escrows bets from and pays settlements to.
type Wallet interface {
	Balance() float64
	Debit(amount float64)
	CreditSettlement(s Settlement)
}

type TableOptions struct {
	// NewDeck supplies the deck for each round. Defaults to a shuffled
	// 52-card deck drawn from Rand.
	NewDeck func() *Deck
	Rand    *rand.Rand
	NewID   func() string
}

// Table runs single-player blackjack rounds against one wallet. Callers
// serialize access.
type Table struct {
	State *Round
	opts  TableOptions
}

func NewTable(opts TableOptions) *Table {
	if opts.NewDeck == nil {
		rnd := opts.Rand
		opts.NewDeck = func() *Deck {
			d := NewDeck()
			d.Shuffle(rnd)
			return d
		}
	}
	return &Table{opts: opts}
}

func (t *Table) Phase() Phase {
	if t.State == nil {
		return PhaseIdle
	}
	return t.State.Phase
}

func (t *Table) Snapshot() Snapshot {
	return t.State.Snapshot()
}

// Deal escrows the bet, clamped to the wallet balance, and deals player,
// player, dealer up, dealer hidden. A natural 21 settles at once.
func (t *Table) Deal(w Wallet, bet float64) (Snapshot, error) {
	if err := ValidateAction(t.Phase(), ActionDeal); err != nil {
		return t.Snapshot(), err
	}
	if math.IsNaN(bet) {
		return t.Snapshot(), ErrInvalidBet
	}
	bet = min(bet, w.Balance())
	if bet <= 0 {
		return t.Snapshot(), ErrInvalidBet
	}

	deck := t.opts.NewDeck()
	if deck.Remaining() < 4 {
		return t.Snapshot(), ErrDeckEmpty
	}
	w.Debit(bet)
	r := &Round{Deck: deck, Bet: bet, Phase: PhasePlayerTurn, Result: ResultNone}
	if t.opts.NewID != nil {
		r.ID = t.opts.NewID()
	}
	p1, _ := deck.Deal()
	p2, _ := deck.Deal()
	up, _ := deck.Deal()
	hole, _ := deck.Deal()
	hole.Hidden = true
	r.Player = []Card{p1, p2}
	r.Dealer = []Card{up, hole}
	t.State = r

	if HandValue(r.Player) == 21 {
		if HandValue(reveal(r.Dealer)) == 21 {
			t.settle(w, ResultPush)
		} else {
			t.settle(w, ResultBlackjack)
		}
	}
	return t.Snapshot(), nil
}

func (t *Table) Hit(w Wallet) (Snapshot, error) {
	if err := ValidateAction(t.Phase(), ActionHit); err != nil {
		return t.Snapshot(), err
	}
	r := t.State
	c, ok := r.Deck.Deal()
	if !ok {
		return t.Snapshot(), ErrDeckEmpty
	}
	r.Player = append(r.Player, c)
	if HandValue(r.Player) > 21 {
		t.settle(w, ResultLose)
	}
	return t.Snapshot(), nil
}

// Stand reveals the hole card and draws for the dealer below 17. The draw
// loop stops early if the deck runs out.
func (t *Table) Stand(w Wallet) (Snapshot, error) {
	if err := ValidateAction(t.Phase(), ActionStand); err != nil {
		return t.Snapshot(), err
	}
	r := t.State
	r.Dealer = reveal(r.Dealer)
	for HandValue(r.Dealer) < DealerStandsOn {
		c, ok := r.Deck.Deal()
		if !ok {
			break
		}
		r.Dealer = append(r.Dealer, c)
		r.DealerDraws = append(r.DealerDraws, c)
	}
	t.settle(w, compare(HandValue(r.Player), HandValue(r.Dealer)))
	return t.Snapshot(), nil
}

func (t *Table) settle(w Wallet, result Result) {
	r := t.State
	r.Dealer = reveal(r.Dealer)
	r.Result = result
	r.Payout = Payout(result, r.Bet)
	r.Phase = PhaseSettled
	w.CreditSettlement(Settlement{RoundID: r.ID, Bet: r.Bet, Payout: r.Payout, Result: result})
}

// LastSettlement reports the settled outcome of the current round, if any.
func (t *Table) LastSettlement() (Settlement, bool) {
	if t.State == nil || t.State.Phase != PhaseSettled {
		return Settlement{}, false
	}
	r := t.State
	return Settlement{RoundID: r.ID, Bet: r.Bet, Payout: r.Payout, Result: r.Result}, true
}

package game

type ActionType string

const (
	ActionDeal  ActionType = "deal"
	ActionHit   ActionType = "hit"
	ActionStand ActionType = "stand"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePlayerTurn Phase = "player_turn"
	PhaseSettled    Phase = "settled"
)

type Result string

const (
	ResultNone      Result = "NONE"
	ResultWin       Result = "WIN"
	ResultLose      Result = "LOSE"
	ResultPush      Result = "PUSH"
	ResultBlackjack Result = "BLACKJACK"
)

// Round is one hand from deal to settlement. It is replaced on the next deal.
type Round struct {
	ID          string
	Deck        *Deck
	Player      []Card
	Dealer      []Card
	DealerDraws []Card
	Bet         float64
	Phase       Phase
	Result      Result
	Payout      float64
}

type Settlement struct {
	RoundID string
	Bet     float64
	Payout  float64
	Result  Result
}

// Profit is the part of the payout that exceeds the stake.
func (s Settlement) Profit() float64 {
	return max(0, s.Payout-s.Bet)
}

func (s Settlement) Won() bool {
	return s.Result == ResultWin || s.Result == ResultBlackjack
}

type Snapshot struct {
	RoundID     string   `json:"round_id,omitempty"`
	Phase       Phase    `json:"phase"`
	Result      Result   `json:"result"`
	Bet         float64  `json:"bet"`
	Payout      float64  `json:"payout"`
	PlayerCards []string `json:"player_cards"`
	PlayerValue int      `json:"player_value"`
	DealerCards []string `json:"dealer_cards"`
	DealerValue int      `json:"dealer_value"`
	DealerDraws []string `json:"dealer_draws,omitempty"`
}

func (r *Round) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{Phase: PhaseIdle, Result: ResultNone, PlayerCards: []string{}, DealerCards: []string{}}
	}
	snap := Snapshot{
		RoundID:     r.ID,
		Phase:       r.Phase,
		Result:      r.Result,
		Bet:         r.Bet,
		Payout:      r.Payout,
		PlayerCards: cardStrings(r.Player),
		PlayerValue: HandValue(r.Player),
		DealerCards: cardStrings(r.Dealer),
		DealerValue: HandValue(r.Dealer),
	}
	if len(r.DealerDraws) > 0 {
		snap.DealerDraws = cardStrings(r.DealerDraws)
	}
	return snap
}

package game

import "errors"

var (
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidBet    = errors.New("invalid_bet")
	ErrDeckEmpty     = errors.New("deck_empty")
)

const DealerStandsOn = 17

func ValidateAction(phase Phase, action ActionType) error {
	switch action {
	case ActionDeal:
		if phase == PhasePlayerTurn {
			return ErrInvalidAction
		}
		return nil
	case ActionHit, ActionStand:
		if phase != PhasePlayerTurn {
			return ErrInvalidAction
		}
		return nil
	default:
		return ErrInvalidAction
	}
}

// Payout is the amount returned to the player, stake included.
func Payout(result Result, bet float64) float64 {
	switch result {
	case ResultWin:
		return bet * 2
	case ResultBlackjack:
		return bet * 2.5
	case ResultPush:
		return bet
	default:
		return 0
	}
}

func compare(player, dealer int) Result {
	switch {
	case dealer > 21:
		return ResultWin
	case dealer > player:
		return ResultLose
	case dealer < player:
		return ResultWin
	default:
		return ResultPush
	}
}

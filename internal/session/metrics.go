package session

import "expvar"

var (
	metricClicks          = expvar.NewInt("game_clicks_total")
	metricUpgrades        = expvar.NewInt("game_upgrades_purchased_total")
	metricRebirths        = expvar.NewInt("game_rebirths_total")
	metricBlackjackHands  = expvar.NewInt("blackjack_hands_total")
	metricSaves           = expvar.NewInt("session_saves_total")
	metricSaveErrors      = expvar.NewInt("session_save_errors_total")
	metricSessionsActive  = expvar.NewInt("sessions_active")
	metricSessionsExpired = expvar.NewInt("sessions_expired_total")
)

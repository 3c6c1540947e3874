package httptransport

import "expvar"

var (
	metricRegisterTotal  = expvar.NewInt("http_register_total")
	metricRegisterErrors = expvar.NewInt("http_register_errors_total")

	metricLoginTotal  = expvar.NewInt("http_login_total")
	metricLoginErrors = expvar.NewInt("http_login_errors_total")

	metricGameActionTotal  = expvar.NewInt("http_game_action_total")
	metricGameActionErrors = expvar.NewInt("http_game_action_errors_total")

	metricAdminActionTotal  = expvar.NewInt("http_admin_action_total")
	metricAdminActionErrors = expvar.NewInt("http_admin_action_errors_total")
)

package admin

import "neon-tycoon/internal/progression"

const (
	ActionResetMoney    = "reset_money"
	ActionStealRebirth  = "steal_rebirth"
	ActionResetUpgrades = "reset_upgrades"
	ActionAddMoney      = "add_money"
	ActionGrantTech     = "grant_tech"
	ActionAdjustUpgrade = "adjust_upgrade"
)

type ActionInput struct {
	Action    string `json:"action"`
	UpgradeID string `json:"upgrade_id,omitempty"`
	Delta     int    `json:"delta,omitempty"`
}

type ActionResponse struct {
	Username string               `json:"username"`
	Action   string               `json:"action"`
	Applied  bool                 `json:"applied"`
	Live     bool                 `json:"live"`
	Progress progression.Progress `json:"progress"`
}

type PlayersResponse struct {
	Items []PlayerItem `json:"items"`
}

type PlayerItem struct {
	Username    string               `json:"username"`
	IsAdmin     bool                 `json:"is_admin"`
	Online      bool                 `json:"online"`
	CompanyName string               `json:"company_name"`
	Progress    progression.Progress `json:"progress"`
}

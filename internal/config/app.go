package config

type AppConfig struct {
	Server   ServerConfig
	Log      LogConfig
	Game     GameConfig
	Narrator NarratorConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	gameCfg, err := LoadGame()
	if err != nil {
		return AppConfig{}, err
	}
	narratorCfg, err := LoadNarrator()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server:   serverCfg,
		Log:      logCfg,
		Game:     gameCfg,
		Narrator: narratorCfg,
	}, nil
}

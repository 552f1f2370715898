package main

import (
	"rpg/internal/rpgconfig"
	"rpg/internal/rpgerrors"
	"rpg/internal/rpglog"
	"rpg/internal/rpgstore"
)

// storeForConfig opens the Store backend cfg selects, rooted at repoRoot.
func storeForConfig(repoRoot string, cfg *rpgconfig.Config, logger *rpglog.Logger) (rpgstore.Store, error) {
	switch cfg.Store.Kind {
	case "sqlite":
		return rpgstore.OpenSQLStore(repoRoot, cfg.Store.Path, logger)
	case "memory", "":
		return rpgstore.NewMemoryStore(), nil
	default:
		return nil, rpgerrors.ConfigError("unknown store.kind "+cfg.Store.Kind, nil)
	}
}

func loggerForConfig(cfg *rpgconfig.Config) *rpglog.Logger {
	return rpglog.NewLogger(rpglog.Config{
		Format: rpglog.Format(cfg.Logging.Format),
		Level:  rpglog.LogLevel(cfg.Logging.Level),
	})
}

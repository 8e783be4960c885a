package nakama

import (
	"context"
	"database/sql"
	"strconv"

	"burako/internal/app"
	"burako/internal/logging"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires the Burako RPCs into the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	target := targetScoreFromEnv(env, logger)

	h := NewHandlers(target, logging.New("burako", env[EnvLogLevel]))
	if err := RegisterRPCs(initializer, h); err != nil {
		return err
	}

	logger.Info("Burako Go module loaded (target score %d).", target)
	return nil
}

func targetScoreFromEnv(env map[string]string, logger runtime.Logger) int {
	raw, ok := env[EnvTargetScore]
	if !ok || raw == "" {
		return app.DefaultTargetScore
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		logger.Warn("Ignoring %s=%q, using %d", EnvTargetScore, raw, app.DefaultTargetScore)
		return app.DefaultTargetScore
	}
	return v
}

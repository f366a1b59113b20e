package services

import (
	"context"

	"github.com/Desla-ai/Doeum/internal/metrics"

	log "github.com/sirupsen/logrus"
)

// sideEffects runs writes that follow a committed primary write. Their
// failures are logged and counted but never returned to the caller.
type sideEffects struct {
	metrics *metrics.Metrics
}

func (s sideEffects) run(ctx context.Context, effect string, fields log.Fields, fn func(ctx context.Context) error) {
	if err := fn(ctx); err != nil {
		log.WithFields(fields).WithField("effect", effect).WithError(err).
			Warn("[SideEffect] best-effort write failed")
		s.metrics.RecordSideEffectFailure(effect)
	}
}

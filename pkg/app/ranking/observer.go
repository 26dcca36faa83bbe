package ranking

import (
	"github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

// Observer receives every candidate outcome of a ranking pass.
type Observer interface {
	Observe(mode search.Mode, outcome Outcome)
}

type telemetryObserver struct {
	logger *logrus.Logger
}

// NewTelemetryObserver counts outcomes in Prometheus and logs the failed ones.
func NewTelemetryObserver(logger *logrus.Logger) Observer {
	return &telemetryObserver{logger: logger}
}

func (t *telemetryObserver) Observe(mode search.Mode, o Outcome) {
	prometheus.CandidatesTotal.WithLabelValues(mode.String(), string(o.Stage)).Inc()
	if o.OK() || t.logger == nil {
		return
	}

	entry := t.logger.WithFields(logrus.Fields{
		"url":   o.Result.URL,
		"stage": o.Stage,
		"mode":  mode,
		"index": o.Index,
	})
	if o.Err != nil {
		entry = entry.WithError(o.Err)
	}
	switch o.Stage {
	case StageSkipped, StageCanceled:
		entry.Debug("candidate not scored")
	default:
		entry.Warn("candidate dropped")
	}
}

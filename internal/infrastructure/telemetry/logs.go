package telemetry

import (
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BridgeLogger builds a logger on base that also ships entries at level and
// above to the collector. Without log export it only writes to base.
func (p *Providers) BridgeLogger(base zapcore.Core, level zapcore.Level, opts ...zap.Option) (*zap.Logger, error) {
	if !p.LogsEnabled() {
		return zap.New(base, opts...), nil
	}

	exported, err := zapcore.NewIncreaseLevelCore(
		otelzap.NewCore(p.opts.Collector.ServiceName, otelzap.WithLoggerProvider(p.logs)),
		level,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to filter exported logs: %w", err)
	}
	return zap.New(zapcore.NewTee(base, exported), opts...), nil
}

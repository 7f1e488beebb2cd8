package obs

import "go.uber.org/zap"

// ZapLogger bridges Logger onto a zap.SugaredLogger for production use.
type ZapLogger struct {
	S   *zap.SugaredLogger
	Min Level
}

func (z ZapLogger) Logf(level Level, format string, args ...interface{}) {
	if z.S == nil || level < z.Min {
		return
	}
	switch level {
	case Debug:
		z.S.Debugf(format, args...)
	case Info:
		z.S.Infof(format, args...)
	case Warn:
		z.S.Warnf(format, args...)
	default:
		z.S.Errorf(format, args...)
	}
}

package obs

import "go.uber.org/zap"

// LogHook writes events to a zap logger. Failures log at warn, everything
// else at info.
type LogHook struct {
	Logger *zap.Logger
}

func NewLogHook(logger *zap.Logger) LogHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return LogHook{Logger: logger}
}

func (h LogHook) Emit(e Event) {
	fields := []zap.Field{zap.String("event", string(e.Kind))}
	if e.AttemptID != "" {
		fields = append(fields, zap.String("attempt_id", e.AttemptID))
	}
	if e.Tier != "" {
		fields = append(fields, zap.String("tier", e.Tier))
	}
	if e.State != "" {
		fields = append(fields, zap.String("state", e.State))
	}
	if e.Records > 0 {
		fields = append(fields, zap.Int("records", e.Records))
	}
	if e.Duration > 0 {
		fields = append(fields, zap.Duration("duration", e.Duration))
	}

	switch e.Kind {
	case TierFailed, FellBack, RefreshRejected:
		if e.Err != nil {
			fields = append(fields, zap.Error(e.Err))
		}
		h.Logger.Warn("enrollment data", fields...)
	default:
		h.Logger.Info("enrollment data", fields...)
	}
}

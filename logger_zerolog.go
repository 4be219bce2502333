package gradauth

import "github.com/rs/zerolog"

// ZerologAdapter exposes a zerolog.Logger through the package Logger
// interface so hosts with an existing logging setup can feed auth events
// into it.
type ZerologAdapter struct {
	log zerolog.Logger
}

// NewZerologAdapter wraps a zerolog logger.
func NewZerologAdapter(log zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{log: log.With().Str("component", "gradauth").Logger()}
}

func (z *ZerologAdapter) Debug(format string, args ...any) {
	z.log.Debug().Msgf(format, args...)
}

func (z *ZerologAdapter) Info(format string, args ...any) {
	z.log.Info().Msgf(format, args...)
}

func (z *ZerologAdapter) Error(format string, args ...any) {
	z.log.Error().Msgf(format, args...)
}

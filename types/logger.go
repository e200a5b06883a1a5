package types

// Logger is the structured logger used by the coordinator, transports and
// variants. Key-value pairs follow the zap.SugaredLogger convention, so a
// sugared zap logger satisfies it directly.
//
// Levels used by submux:
//   - Debug: subscription lifecycle (channel subscribed, entry retired)
//   - Info: transport start and shutdown
//   - Warn: retried commands, undecodable or unexpected messages
//   - Error: failed raw commands and registry invariant violations
//
// submux itself never calls Fatal; it is part of the interface for
// compatibility with common loggers.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	Fatal(msg string, keysAndValues ...any)
}

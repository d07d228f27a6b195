package core

// Logger is implemented by every logging backend.
// args are optional extras: errors, map[string]interface{} of custom data.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// LogSubject identifies what a log entry is about (a fiche, an instructor).
// Backends that support it attach it to the entry instead of printing it.
type LogSubject struct {
	ID   string
	Name string
}

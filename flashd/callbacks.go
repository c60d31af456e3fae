package flashd

// Progress describes how far a Write operation has come. Passed to
// ProgressCallback after every committed page.
type Progress struct {
	// PagesWritten is the number of pages committed so far
	PagesWritten int

	// TotalPages is the number of pages the request touches
	TotalPages int

	// BytesWritten is the number of payload bytes consumed so far
	BytesWritten int
}

// Percentage returns the completion percentage (0.0 to 100.0).
func (p Progress) Percentage() float64 {
	if p.TotalPages == 0 {
		return 100
	}
	return float64(p.PagesWritten) / float64(p.TotalPages) * 100
}

// ProgressCallback is called after each committed page during Write.
// Implementations should return quickly; the flash latch sits idle while
// the callback runs.
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the
// driver. This allows integration with any logging framework.
//
// Example with log/slog:
//
//	type SlogAdapter struct{ L *slog.Logger }
//	func (a SlogAdapter) Debug(msg string, kv ...interface{}) { a.L.Debug(msg, kv...) }
//	func (a SlogAdapter) Info(msg string, kv ...interface{})  { a.L.Info(msg, kv...) }
//	func (a SlogAdapter) Error(msg string, kv ...interface{}) { a.L.Error(msg, kv...) }
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

func (d *Driver) reportProgress(p Progress) {
	if d.config.Progress != nil {
		d.config.Progress(p)
	}
}

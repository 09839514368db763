package logger

import (
	"io"
	"log"
	"os"

	"github.com/screa/vanity-tx-miner/pkg/types"
)

// Log flags
const (
	LstdFlags     = log.LstdFlags
	Lmicroseconds = log.Lmicroseconds
)

// Logger wraps the standard log.Logger with additional functionality
type Logger struct {
	*log.Logger
}

// New creates a new logger
func New() *Logger {
	return &Logger{
		Logger: log.New(os.Stdout, "", log.LstdFlags),
	}
}

// NewWriter creates a new logger that writes to the provided writer
func NewWriter(w io.Writer) *Logger {
	return &Logger{
		Logger: log.New(w, "", log.LstdFlags),
	}
}

// SetOutput sets the output destination for the logger
func (l *Logger) SetOutput(w io.Writer) {
	l.Logger.SetOutput(w)
}

// SetFlags sets the output flags for the logger
func (l *Logger) SetFlags(flag int) {
	l.Logger.SetFlags(flag)
}

// Sink returns an event sink that writes search events to l.
func (l *Logger) Sink() types.EventSink {
	return types.EventFunc(l.logEvent)
}

func (l *Logger) logEvent(e types.Event) {
	switch e.Kind {
	case types.EventStarted:
		l.Printf("Round %d: searching 0x%s varying %s over %s candidates with %d workers",
			e.Round, e.Prefix, e.Mode, e.Domain, e.Workers)
	case types.EventProgress:
		l.Printf("Progress: %d attempts, %.2f hashes/sec, No match yet", e.Attempts, rate(e))
	case types.EventMatch:
		l.Printf("Found matching tx hash %s (worker %d, %s) after %d attempts, %.2f hashes/sec",
			e.Result.Hash.Hex(), e.Result.Worker, e.Result.Fillable, e.Result.Attempts, e.Result.Rate())
	case types.EventFinished:
		if e.Err != nil {
			l.Printf("Search for 0x%s stopped after %d attempts in %v: %v", e.Prefix, e.Attempts, e.Elapsed, e.Err)
			return
		}
		l.Printf("Search for 0x%s finished: %d attempts in %v (%.2f hashes/sec)", e.Prefix, e.Attempts, e.Elapsed, rate(e))
	}
}

func rate(e types.Event) float64 {
	if e.Elapsed.Seconds() <= 0 {
		return 0
	}
	return float64(e.Attempts) / e.Elapsed.Seconds()
}

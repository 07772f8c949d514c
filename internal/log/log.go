// Package log provides the leveled debug logger used across the BUDDY
// client. Output goes to stderr so panel results on stdout stay clean.
package log

import (
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
)

// Level controls how chatty the debug output is.
type Level int32

const (
	Off Level = iota
	Basic
	Detailed
	Trace
	// Wire also dumps request and response bodies.
	Wire
)

var current atomic.Int32

func init() {
	if raw := os.Getenv("BUDDY_DEBUG"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			SetLevel(LevelFromInt(n))
		}
	}
}

// LevelFromInt clamps an integer to a valid Level.
func LevelFromInt(n int) Level {
	switch {
	case n <= 0:
		return Off
	case n >= int(Wire):
		return Wire
	default:
		return Level(n)
	}
}

// SetLevel sets the active debug level.
func SetLevel(l Level) { current.Store(int32(l)) }

// CurrentLevel returns the active debug level.
func CurrentLevel() Level { return Level(current.Load()) }

// Debug prints when the active level is at or above the given one.
func Debug(l Level, format string, args ...any) {
	if CurrentLevel() >= l && l > Off {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Log prints unconditionally; use it for rare diagnostics that must not
// be silenced by the level.
func Log(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

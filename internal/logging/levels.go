// internal/logging/levels.go
package logging

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// TraceLevel sits one step below zap's Debug (-1) and is meant for
// JSON-RPC frame dumps and other wire noise that even debug runs
// usually keep off.
const TraceLevel = zapcore.Level(-2)

// LevelFromString parses a level name, accepting "trace" on top of
// the names zapcore already knows. An empty name is an error, not a
// silent Info: zapcore's own parser defaults "" to Info, which would
// hide a missing config value.
func LevelFromString(level string) (zapcore.Level, error) {
	switch level {
	case "trace":
		return TraceLevel, nil
	case "":
		return zapcore.InfoLevel, fmt.Errorf("log level must not be empty")
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

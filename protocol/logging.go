package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// LogLevel is the severity of a log message.
// The values line up with log/slog levels; the names are the RFC 5424 severities.
type LogLevel int

const (
	LevelDebug     LogLevel = -4
	LevelInfo      LogLevel = 0
	LevelNotice    LogLevel = 1
	LevelWarning   LogLevel = 4
	LevelError     LogLevel = 8
	LevelCritical  LogLevel = 9
	LevelAlert     LogLevel = 10
	LevelEmergency LogLevel = 11
)

var logLevelNames = []struct {
	level LogLevel
	name  string
}{
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelNotice, "notice"},
	{LevelWarning, "warning"},
	{LevelError, "error"},
	{LevelCritical, "critical"},
	{LevelAlert, "alert"},
	{LevelEmergency, "emergency"},
}

// String returns the name of the most severe level that l does not exceed.
func (l LogLevel) String() string {
	for _, n := range logLevelNames {
		if l <= n.level {
			return n.name
		}
	}
	return "emergency"
}

// MarshalJSON implements json.Marshaler for LogLevel.
func (l LogLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON implements json.Unmarshaler for LogLevel.
func (l *LogLevel) UnmarshalJSON(b []byte) error {
	name, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("invalid log level: %s", string(b))
	}
	for _, n := range logLevelNames {
		if n.name == name {
			*l = n.level
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s", string(b))
}

package logtail

import "strings"

// Level is the severity found in a log line.
type Level int

const (
	LevelNone Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var levelTokens = map[string]Level{
	"DBG":   LevelDebug,
	"DEBUG": LevelDebug,
	"INF":   LevelInfo,
	"INFO":  LevelInfo,
	"WRN":   LevelWarn,
	"WARN":  LevelWarn,
	"ERR":   LevelError,
	"ERROR": LevelError,
	"FTL":   LevelError,
	"FATAL": LevelError,
}

// LevelOf finds the first level token among the leading fields of line.
// Both the long (INFO) and zerolog console (INF) spellings are recognised.
func LevelOf(line string) Level {
	fields := strings.Fields(line)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	for _, f := range fields {
		f = strings.Trim(f, "[]:")
		if lvl, ok := levelTokens[strings.ToUpper(f)]; ok {
			return lvl
		}
	}
	return LevelNone
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return ""
	}
}

package logging

import (
	"bytes"
	"strings"
)

// Level represents different logging levels.
type Level int

const (
	DEBUG Level = iota + 1
	INFO
	NOTICE
	WARN
	ERROR
	FATAL
)

const (
	normalColor = 0
	red         = 31
	yellow      = 33
	blue        = 34
	grey        = 90
)

// String constants for logging levels.
const (
	levelDEBUG  = "DEBUG"
	levelINFO   = "INFO"
	levelNOTICE = "NOTICE"
	levelWARN   = "WARN"
	levelERROR  = "ERROR"
	levelFATAL  = "FATAL"
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return levelDEBUG
	case INFO:
		return levelINFO
	case NOTICE:
		return levelNOTICE
	case WARN:
		return levelWARN
	case ERROR:
		return levelERROR
	case FATAL:
		return levelFATAL
	default:
		return ""
	}
}

//nolint:gomnd // Color codes are sent as numbers
func (l Level) color() uint {
	switch l {
	case ERROR, FATAL:
		return red
	case WARN, NOTICE:
		return yellow
	case INFO:
		return blue
	case DEBUG:
		return grey
	default:
		return normalColor
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	buffer := bytes.NewBufferString(`"`)
	buffer.WriteString(l.String())
	buffer.WriteString(`"`)

	return buffer.Bytes(), nil
}

// GetLevelFromString converts a string to a logging level, defaulting to INFO.
func GetLevelFromString(level string) Level {
	switch strings.ToUpper(level) {
	case levelDEBUG:
		return DEBUG
	case levelINFO:
		return INFO
	case levelNOTICE:
		return NOTICE
	case levelWARN:
		return WARN
	case levelERROR:
		return ERROR
	case levelFATAL:
		return FATAL
	default:
		return INFO
	}
}

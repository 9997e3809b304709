package util

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logger from a level name, a format ("json" or "text")
// and an output ("stdout", "stderr" or a file path). Invalid values fall back
// to info, text and stderr with a warning.
func NewLogger(level, format, output string) *logrus.Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid log level '%s', using 'info'", level)
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		log.Warnf("Invalid log format '%s', using 'text'", format)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch output {
	case "stdout":
		log.SetOutput(os.Stdout)
	case "stderr", "":
		log.SetOutput(os.Stderr)
	default:
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Warnf("Failed to open log file '%s', using stderr", output)
			log.SetOutput(os.Stderr)
		} else {
			log.SetOutput(file)
		}
	}
	return log
}

// Package logging configures the logrus logger shared by the CLI, the API server
// and the import pipeline.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Standard field names so every package logs the same keys.
const (
	FieldFile     = "file"
	FieldDialect  = "dialect"
	FieldAccount  = "account"
	FieldCategory = "category"
	FieldCount    = "count"
	FieldImportID = "import_id"
	FieldPair     = "pair"
	FieldRemote   = "remote"
)

// Configure applies level and format to the logrus standard logger and returns it.
// Unknown levels fall back to warn, unknown formats to text.
func Configure(level, format string) *logrus.Logger {
	logger := logrus.StandardLogger()
	apply(logger, level, format, os.Stderr)
	return logger
}

// New returns a dedicated logger writing to w.
func New(level, format string, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	apply(logger, level, format, w)
	return logger
}

// Discard returns a logger that drops everything. Handy for tests and for
// library callers that did not pass one.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func apply(logger *logrus.Logger, level, format string, w io.Writer) {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.WarnLevel
	}
	logger.SetLevel(lvl)
	logger.SetOutput(w)

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

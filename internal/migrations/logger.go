package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/uniclip/internal/logging"
	"github.com/pressly/goose/v3"
)

// goose prints to stdout by default, which lands in the middle of the REPL.
func init() {
	goose.SetLogger(goose.NopLogger())
}

// UseLogger sends goose progress to l at debug level.
func UseLogger(l logging.Logger) {
	goose.SetLogger(gooseLogger{l: l.With("component", "migrations")})
}

type gooseLogger struct {
	l logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.l.Debug(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.l.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

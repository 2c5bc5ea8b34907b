package app

import (
	"fmt"
	"strings"

	"github.com/kilianp07/velomagg/infra/logger"
)

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debugf("cron: %s%s", msg, pairs(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Errorf("cron: %s%s: %v", msg, pairs(keysAndValues), err)
}

func pairs(kv []any) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}

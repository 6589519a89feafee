// Package logging builds the process logger.
// Informational output goes to stdout and problems go to stderr,
// which is what cron and systemd timers expect.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

func New(stdout, stderr io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	l.AddHook(&writer.Hook{
		Writer:    stdout,
		LogLevels: []logrus.Level{logrus.InfoLevel, logrus.DebugLevel, logrus.TraceLevel},
	})
	l.AddHook(&writer.Hook{
		Writer:    stderr,
		LogLevels: []logrus.Level{logrus.WarnLevel, logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel},
	})
	return l
}

package worker

import (
	"fmt"
	"log/slog"
	"os"
)

// slogLogger routes asynq's internal logs through slog.
type slogLogger struct {
	log *slog.Logger
}

func newSlogLogger() *slogLogger {
	return &slogLogger{log: slog.Default().With("component", "asynq")}
}

func (l *slogLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...)) }
func (l *slogLogger) Info(args ...interface{})  { l.log.Info(fmt.Sprint(args...)) }
func (l *slogLogger) Warn(args ...interface{})  { l.log.Warn(fmt.Sprint(args...)) }
func (l *slogLogger) Error(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }

func (l *slogLogger) Fatal(args ...interface{}) {
	l.log.Error(fmt.Sprint(args...))
	os.Exit(1)
}

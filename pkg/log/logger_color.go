package log

import (
	"context"
	"log"

	"github.com/fatih/color"
)

// ColorLogger writes the same lines as CslLogger but colorizes the level
// prefix for interactive terminal use.
type ColorLogger struct {
	info  *color.Color
	warn  *color.Color
	err   *color.Color
	debug *color.Color
}

func NewColorLogger() (*ColorLogger, error) {
	return &ColorLogger{
		info:  color.New(color.FgCyan),
		warn:  color.New(color.FgYellow),
		err:   color.New(color.FgRed, color.Bold),
		debug: color.New(color.FgWhite),
	}, nil
}

func (l *ColorLogger) Info(ctx context.Context, format string, args ...interface{}) {
	log.Printf(l.info.Sprint("[INFO] ")+format, args...)
}

func (l *ColorLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	log.Printf(l.warn.Sprint("[WARN] ")+format, args...)
}

func (l *ColorLogger) Error(ctx context.Context, format string, args ...interface{}) {
	log.Printf(l.err.Sprint("[ERROR] ")+format, args...)
}

func (l *ColorLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	log.Printf(l.debug.Sprint("[DEBUG] ")+format, args...)
}

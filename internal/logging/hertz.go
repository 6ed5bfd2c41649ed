package logging

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// HertzAdapter routes Hertz's internal logging through the shared
// charmbracelet logger so server output stays in one format.
type HertzAdapter struct {
	logger *log.Logger
}

// NewHertzAdapter wraps logger for hlog.SetLogger.
func NewHertzAdapter(logger *log.Logger) *HertzAdapter {
	return &HertzAdapter{logger: logger}
}

func (h *HertzAdapter) Trace(v ...interface{})  { h.logger.Debug(sprint(v...)) }
func (h *HertzAdapter) Debug(v ...interface{})  { h.logger.Debug(sprint(v...)) }
func (h *HertzAdapter) Info(v ...interface{})   { h.logger.Info(sprint(v...)) }
func (h *HertzAdapter) Notice(v ...interface{}) { h.logger.Info(sprint(v...)) }
func (h *HertzAdapter) Warn(v ...interface{})   { h.logger.Warn(sprint(v...)) }
func (h *HertzAdapter) Error(v ...interface{})  { h.logger.Error(sprint(v...)) }
func (h *HertzAdapter) Fatal(v ...interface{})  { h.logger.Fatal(sprint(v...)) }

func (h *HertzAdapter) Tracef(format string, v ...interface{}) {
	h.logger.Debug(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Debugf(format string, v ...interface{}) {
	h.logger.Debug(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Infof(format string, v ...interface{}) {
	h.logger.Info(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Noticef(format string, v ...interface{}) {
	h.logger.Info(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Warnf(format string, v ...interface{}) {
	h.logger.Warn(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Errorf(format string, v ...interface{}) {
	h.logger.Error(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Fatalf(format string, v ...interface{}) {
	h.logger.Fatal(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) CtxTracef(ctx context.Context, format string, v ...interface{}) {
	h.Tracef(format, v...)
}

func (h *HertzAdapter) CtxDebugf(ctx context.Context, format string, v ...interface{}) {
	h.Debugf(format, v...)
}

func (h *HertzAdapter) CtxInfof(ctx context.Context, format string, v ...interface{}) {
	h.Infof(format, v...)
}

func (h *HertzAdapter) CtxNoticef(ctx context.Context, format string, v ...interface{}) {
	h.Noticef(format, v...)
}

func (h *HertzAdapter) CtxWarnf(ctx context.Context, format string, v ...interface{}) {
	h.Warnf(format, v...)
}

func (h *HertzAdapter) CtxErrorf(ctx context.Context, format string, v ...interface{}) {
	h.Errorf(format, v...)
}

func (h *HertzAdapter) CtxFatalf(ctx context.Context, format string, v ...interface{}) {
	h.Fatalf(format, v...)
}

// SetLevel is a no-op: the level is managed on the shared logger.
func (h *HertzAdapter) SetLevel(level hlog.Level) {}

// SetOutput is a no-op: the output is managed on the shared logger.
func (h *HertzAdapter) SetOutput(writer io.Writer) {}

func sprint(v ...interface{}) string {
	if len(v) == 1 {
		if s, ok := v[0].(string); ok {
			return s
		}
	}
	return fmt.Sprint(v...)
}

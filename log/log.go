// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the logging front-end of the ledger. It forwards to the
// go-ethereum structured logger so handlers can be swapped process wide.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// Logger writes key/value pairs to a handler.
type Logger = ethlog.Logger

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
)

// active is the handler every logger derived from root writes to.
var active atomic.Pointer[slog.Handler]

func init() {
	SetHandler(ethlog.DiscardHandler())
	ethlog.SetDefault(ethlog.NewLogger(&swapHandler{}))
}

// SetHandler replaces the handler behind root and every logger derived from
// it, including package level loggers created before.
func SetHandler(h slog.Handler) {
	active.Store(&h)
}

// swapHandler forwards to the active handler at the time of each record,
// replaying the attrs and groups it was derived with.
type swapHandler struct {
	ops []handlerOp
}

// handlerOp is either a group or a set of attrs.
type handlerOp struct {
	group string
	attrs []slog.Attr
}

func (h *swapHandler) current() slog.Handler {
	target := *active.Load()
	for _, op := range h.ops {
		if op.group != "" {
			target = target.WithGroup(op.group)
		} else {
			target = target.WithAttrs(op.attrs)
		}
	}
	return target
}

func (h *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*active.Load()).Enabled(ctx, level)
}

func (h *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.current().Handle(ctx, r)
}

func (h *swapHandler) with(op handlerOp) *swapHandler {
	ops := make([]handlerOp, 0, len(h.ops)+1)
	return &swapHandler{ops: append(append(ops, h.ops...), op)}
}

func (h *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(handlerOp{attrs: attrs})
}

func (h *swapHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(handlerOp{group: name})
}

// Root returns the root logger.
func Root() Logger {
	return ethlog.Root()
}

// SetDefault replaces the root logger.
func SetDefault(l Logger) {
	ethlog.SetDefault(l)
}

// WithContext returns a logger derived from root, every record carrying ctx.
func WithContext(ctx ...any) Logger {
	return ethlog.Root().With(ctx...)
}

// Discard returns a logger that drops every record.
func Discard() Logger {
	return ethlog.NewLogger(ethlog.DiscardHandler())
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "trce":
		return LevelTrace, nil
	case "debug", "dbug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "eror":
		return LevelError, nil
	}
	return 0, errors.Errorf("unknown log level %q", s)
}

// NewHandler builds a handler writing the given format.
// Supported formats are "terminal", "logfmt" and "json".
func NewHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	switch format {
	case "", "terminal":
		return ethlog.NewTerminalHandlerWithLevel(w, level, useColor(w)), nil
	case "logfmt":
		return ethlog.LogfmtHandlerWithLevel(w, level), nil
	case "json":
		return ethlog.JSONHandlerWithLevel(w, level), nil
	}
	return nil, errors.Errorf("unknown log format %q", format)
}

// Init installs a handler writing to w.
func Init(w io.Writer, format, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	h, err := NewHandler(w, format, lvl)
	if err != nil {
		return err
	}
	SetHandler(h)
	return nil
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) && os.Getenv("TERM") != "dumb"
}

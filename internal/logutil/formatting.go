// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package logutil

import (
	"context"
	"io"
	"log/slog"
	"path"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// LineFormat controls how a formattingHandler renders one log line.
type LineFormat struct {
	TimestampFormat string
	LevelString     bool
}

// DefaultLineFormat matches a terminal session: a human timestamp and a
// three-letter level tag.
var DefaultLineFormat = LineFormat{TimestampFormat: "2006-01-02 15:04:05", LevelString: true}

type formattingHandler struct {
	attrs  []slog.Attr
	groups []string
	out    io.Writer
	format LineFormat
}

// NewHandler returns a slog.Handler that writes to out using format,
// tagging each line with the package name of its caller.
func NewHandler(out io.Writer, format LineFormat) slog.Handler {
	return &formattingHandler{out: out, format: format}
}

var _ slog.Handler = (*formattingHandler)(nil)

func (h *formattingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *formattingHandler) Handle(_ context.Context, rec slog.Record) error {
	fr := runtime.CallersFrames([]uintptr{rec.PC})
	var pkgName string
	if fram, _ := fr.Next(); fram.Function != "" {
		pkgName = funcNameToPkg(fram.Function)
		if lvl := globalLevels.Get(pkgName); lvl > rec.Level {
			return nil
		}
	}

	var prefix string
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	var sb strings.Builder
	sb.WriteString(rec.Message)

	attrs := make([]slog.Attr, 0, rec.NumAttrs()+len(h.attrs)+1)
	rec.Attrs(func(attr slog.Attr) bool {
		attr.Key = prefix + attr.Key
		attrs = append(attrs, attr)
		return true
	})
	attrs = append(attrs, h.attrs...)
	if pkgName != "" {
		attrs = append(attrs, slog.String("pkg", pkgName))
	}

	var attrCount int
	for _, a := range attrs {
		appendAttr(&sb, a, &attrCount)
	}
	if attrCount > 0 {
		sb.WriteRune(')')
	}

	line := formatLine(rec.Time, rec.Level, sb.String(), h.format)
	_, err := io.WriteString(h.out, line)
	return err
}

func formatLine(when time.Time, level slog.Level, message string, f LineFormat) string {
	var buf strings.Builder
	if f.TimestampFormat != "" {
		buf.WriteString(when.Format(f.TimestampFormat))
		buf.WriteRune(' ')
	}
	if f.LevelString {
		buf.WriteString(levelStr(level))
		buf.WriteRune(' ')
	}
	buf.WriteString(message)
	buf.WriteRune('\n')
	return buf.String()
}

func levelStr(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}

func appendAttr(sb *strings.Builder, a slog.Attr, attrCount *int) {
	const confusables = ` "()[]{},`
	if a.Key == "" {
		return
	}
	sb.WriteRune(' ')
	if *attrCount == 0 {
		sb.WriteRune('(')
	}
	sb.WriteString(a.Key)
	sb.WriteRune('=')
	v := a.Value.Resolve().String()
	if v == "" || strings.ContainsAny(v, confusables) {
		v = strconv.Quote(v)
	}
	sb.WriteString(v)
	*attrCount++
}

func (h *formattingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(h.groups) > 0 {
		prefix := strings.Join(h.groups, ".") + "."
		for i := range attrs {
			attrs[i].Key = prefix + attrs[i].Key
		}
	}
	return &formattingHandler{
		attrs:  append(append([]slog.Attr(nil), h.attrs...), attrs...),
		groups: h.groups,
		out:    h.out,
		format: h.format,
	}
}

func (h *formattingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &formattingHandler{
		attrs:  h.attrs,
		groups: append([]string{name}, h.groups...),
		out:    h.out,
		format: h.format,
	}
}

// funcNameToPkg extracts a short package name from a fully-qualified
// function name, e.g. "github.com/niart120/gen7-initseed-supporter/internal/builder.GenerateTable"
// becomes "builder".
func funcNameToPkg(fn string) string {
	fn = strings.TrimPrefix(fn, "github.com/niart120/gen7-initseed-supporter/internal/")
	fn = strings.TrimPrefix(fn, "github.com/niart120/gen7-initseed-supporter/cmd/")
	parts := strings.SplitN(fn, ".", 2)
	pkgPath := parts[0]
	return path.Base(pkgPath)
}

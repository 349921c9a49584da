package logging

import (
	"bytes"
	"log/slog"
	"strings"
)

// BridgeWriter lets libraries that only know the standard log package write
// into slog. A leading "[name] " prefix becomes the component.
type BridgeWriter struct {
	component string
}

// NewBridgeWriter returns a writer that tags unprefixed lines with component.
func NewBridgeWriter(component string) *BridgeWriter {
	return &BridgeWriter{component: component}
}

// Write logs each call as one Info record.
func (bw *BridgeWriter) Write(p []byte) (int, error) {
	msg := string(bytes.TrimSpace(p))
	if msg == "" {
		return len(p), nil
	}
	msg = stripStdTimestamp(msg)

	component := bw.component
	if strings.HasPrefix(msg, "[") {
		if end := strings.Index(msg, "] "); end > 1 {
			component = strings.ToLower(msg[1:end])
			msg = msg[end+2:]
		}
	}

	Logger().Info(msg, slog.String("component", component))
	return len(p), nil
}

// stripStdTimestamp drops the "2006/01/02 15:04:05 " prefix the standard
// logger adds with its default flags.
func stripStdTimestamp(s string) string {
	const layoutLen = len("2006/01/02 15:04:05 ")
	if len(s) > layoutLen && s[4] == '/' && s[7] == '/' && s[13] == ':' && s[16] == ':' {
		return s[layoutLen:]
	}
	return s
}

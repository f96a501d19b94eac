package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWriter(t *testing.T) {
	tt := []struct {
		name     string
		level    string
		format   string
		debug    bool
		contains string
	}{
		{name: "console info", level: "info", format: "console", contains: "INFO\thello"},
		{name: "console debug", level: "DEBUG", format: "", debug: true, contains: "DEBUG\tdetail"},
		{name: "json", level: "", format: "json", contains: `"msg":"hello"`},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := NewWriter(&buf, tc.level, tc.format)
			if err != nil {
				t.Fatalf("expected nil, got: %v", err)
			}
			log.Debug("detail")
			log.Info("hello")

			out := buf.String()
			if !strings.Contains(out, tc.contains) {
				t.Fatalf("expected %q in: %s", tc.contains, out)
			}
			if got := strings.Contains(out, "detail"); got != tc.debug {
				t.Fatalf("debug output: expected %t, got %t", tc.debug, got)
			}
		})
	}
}

func TestNewWriterRejectsUnknownSettings(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewWriter(&buf, "loud", "console"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
	if _, err := NewWriter(&buf, "info", "xml"); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

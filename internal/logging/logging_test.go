package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{name: "info", debug: false, wantDebug: false},
		{name: "debug", debug: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.debug)

			logger.Debug("hidden unless debug")
			logger.Info("document written", zap.Int("count", 3))
			_ = logger.Sync()

			out := buf.String()
			if got := strings.Contains(out, "hidden unless debug"); got != tt.wantDebug {
				t.Errorf("debug message logged = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "INFO") || !strings.Contains(out, `"count": 3`) {
				t.Errorf("info line missing level or field:\n%s", out)
			}
			if got := strings.Contains(out, "logging_test.go"); got != tt.debug {
				t.Errorf("caller logged = %v, want %v\n%s", got, tt.debug, out)
			}
		})
	}
}

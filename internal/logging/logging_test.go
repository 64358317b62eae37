package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/TWRT/law-office/internal/config"
	"github.com/sirupsen/logrus"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		env  string
		want logrus.Level
	}{
		{env: config.EnvLocal, want: logrus.DebugLevel},
		{env: config.EnvDev, want: logrus.InfoLevel},
		{env: config.EnvProd, want: logrus.WarnLevel},
		{env: "unknown", want: logrus.WarnLevel},
	}
	for _, tt := range tests {
		log := Setup(tt.env, &bytes.Buffer{})
		if got := log.Logger.GetLevel(); got != tt.want {
			t.Fatalf("env %s: expected level %v, got %v", tt.env, tt.want, got)
		}
	}
}

func TestProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(config.EnvProd, &buf)
	log.WithField("operation", "test").Warn("careful")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry["operation"] != "test" || entry["msg"] != "careful" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestDevDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(config.EnvDev, &buf)
	log.Debug("hidden")
	log.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

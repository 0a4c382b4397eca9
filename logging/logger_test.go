package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", "json")
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v", logger.GetLevel())
	}
	logger.WithField("row", 3).Info("胸牌已生成")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "胸牌已生成" || entry["row"] != float64(3) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewTextAndFallbackLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "loud", "text")
	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("unknown level should fall back to info, got %v", logger.GetLevel())
	}
	logger.Debug("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "level=warning") {
		t.Fatalf("unexpected output %q", out)
	}
}

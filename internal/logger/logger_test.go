package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatal("info line emitted at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Fatal("warn line missing")
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("nonsense", &buf)
	log.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatal("info line missing at default level")
	}
}

func TestComponentTag(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf).Component("stream")
	log.Info().Msg("tick")
	if !strings.Contains(buf.String(), `"component":"stream"`) {
		t.Fatalf("component tag missing: %s", buf.String())
	}
}

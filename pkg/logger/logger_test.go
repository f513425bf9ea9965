package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_WritesJSONWithComponent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "debug", Service: "perfil", Output: &buf})

	log := Component("session")
	log.Debug().Str("identity_id", "u1").Msg("session changed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "session" || entry["service"] != "perfil" || entry["identity_id"] != "u1" {
		t.Fatalf("missing fields: %v", entry)
	}
	if entry["level"] != "debug" || entry["message"] != "session changed" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second, Level: "debug"})

	log := Get()
	log.Info().Msg("hello")
	log.Debug().Msg("hidden")

	if !strings.Contains(first.String(), "hello") || second.Len() != 0 {
		t.Fatalf("expected output only in first writer, got %q / %q", first.String(), second.String())
	}
	if strings.Contains(first.String(), "hidden") {
		t.Fatal("debug must be filtered at info level")
	}
}

func TestGet_BeforeInitIsDisabled(t *testing.T) {
	Reset()
	if Get().GetLevel() != zerolog.Disabled {
		t.Fatalf("expected disabled logger, got %v", Get().GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

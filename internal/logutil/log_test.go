package logutil

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGetOrDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := WithLogger(context.Background(), logger)
	l := GetOrDefault(ctx)
	l.Info().Msg("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Fatalf("logger from context was not used: %q", buf.String())
	}

	buf.Reset()
	zl := zerolog.New(&buf)
	ctx = zl.WithContext(context.Background())
	l = GetOrDefault(ctx)
	l.Info().Msg("from zerolog")
	if !strings.Contains(buf.String(), "from zerolog") {
		t.Fatalf("zerolog context logger was not used: %q", buf.String())
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn", "json")
	if err != nil {
		t.Fatal(err)
	}
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"message":"shown"`) {
		t.Fatalf("unexpected output %q", buf.String())
	}

	if _, err := New(&buf, "loud", ""); err == nil {
		t.Fatal("invalid level should be rejected")
	}
	if _, err := New(&buf, "", "xml"); err == nil {
		t.Fatal("invalid format should be rejected")
	}
}

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponentAndContext(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: "info"}) })

	ctx := ContextWithCorrelationID(context.Background(), "abc-123")
	l := WithContext(ctx, WithComponent("ehftv"))
	l.Debug().Str(FieldStage, "page_fetched").Msg("stage")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ehftv", entry[FieldComponent])
	assert.Equal(t, "abc-123", entry[FieldCorrelationID])
	assert.Equal(t, "page_fetched", entry[FieldStage])
	assert.Equal(t, "debug", entry["level"])
}

func TestContextWithCorrelationIDGeneratesID(t *testing.T) {
	ctx := ContextWithCorrelationID(nil, "") //nolint:staticcheck // nil context is handled
	id := CorrelationIDFromContext(ctx)
	assert.Len(t, id, 36)
}

func TestCorrelationIDFromContextMissing(t *testing.T) {
	assert.Equal(t, "", CorrelationIDFromContext(context.Background()))
	assert.Equal(t, "", CorrelationIDFromContext(nil)) //nolint:staticcheck
}

func TestConfigureRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: "info"}) })

	l := WithComponent("test")
	l.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextWithLogger(t *testing.T) {
	t.Parallel()

	logger := Discard()
	ctx := ContextWithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
	assert.Same(t, logger, FromContextOr(context.Background(), logger))
	assert.NotNil(t, FromContextOr(context.Background(), nil))
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json handler honours level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New("json", "warn", &buf)
		require.NoError(t, err)

		logger.Info("dropped")
		logger.Warn("kept", "key", "value")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "kept", record["msg"])
		assert.Equal(t, "value", record["key"])
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := New("xml", "info", nil)
		require.Error(t, err)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := New("text", "loud", nil)
		require.Error(t, err)
	})
}

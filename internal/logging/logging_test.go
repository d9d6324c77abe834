package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("writes json at or above level", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New("warn", &buf)
		require.NoError(t, err)

		log.Info("hidden")
		log.WithField("item_id", 7).Warn("shown")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, "warning", entry["level"])
		assert.EqualValues(t, 7, entry["item_id"])
	})

	t.Run("empty level defaults to info", func(t *testing.T) {
		log, err := New("", &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := New("chatty", &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestContext(t *testing.T) {
	fallback := Discard()
	assert.Equal(t, logrus.FieldLogger(fallback), FromContext(context.Background(), fallback))

	entry := fallback.WithField("request_id", "abc")
	ctx := WithContext(context.Background(), entry)
	assert.Equal(t, logrus.FieldLogger(entry), FromContext(ctx, fallback))
}

package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

func TestLogger_InfoContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo)

	ctx := WithRequestID(context.Background(), "req-42")
	logger.InfoContext(ctx, "match view built", "participants", 10)

	var line map[string]any
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "INFO", line["level"])
	require.Equal(t, "match view built", line["msg"])
	require.Equal(t, "req-42", line["request_id"])
	require.EqualValues(t, 10, line["participants"])
}

func TestLogger_LevelFiltersAndNamedErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelWarn).With("component", "riot")

	logger.Info("dropped")
	require.Zero(t, buf.Len())

	logger.Warn("upstream failed", "error", errors.New("boom"))

	var line map[string]any
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "riot", line["component"])
	require.Equal(t, "boom", line["error"])
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	require.Empty(t, RequestIDFromContext(context.Background()))
	require.Equal(t, context.Background(), WithRequestID(context.Background(), ""))
}

package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
)

type fakeWriter struct {
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaEmitPublishesJSON(t *testing.T) {
	writer := &fakeWriter{}
	emitter := &KafkaEmitter{writer: writer}

	source := models.NewAuditEntry("alice", constants.AuditActionRateLimit, "/translate", "req-1", false).
		WithError("minute window is full")
	require.NoError(t, emitter.Emit(context.Background(), source))

	require.Len(t, writer.messages, 1)
	assert.Equal(t, []byte("alice"), writer.messages[0].Key)

	var decoded models.AuditEntry
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, "alice", decoded.UserID)
	assert.Equal(t, constants.AuditActionRateLimit, decoded.Action)
	assert.False(t, decoded.Success)
}

func TestKafkaEmitterClose(t *testing.T) {
	writer := &fakeWriter{}
	emitter := &KafkaEmitter{writer: writer}

	require.NoError(t, emitter.Close())
	assert.True(t, writer.closed)
}

package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"cricketbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeChange(t *testing.T) {
	want := models.ChangeEvent{
		Topic:      models.TopicBookings,
		Action:     models.ChangeUpdated,
		DocumentID: "bk-1",
		OccurredAt: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	got, err := DecodeChange(raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeChangeRejectsBadMessages(t *testing.T) {
	_, err := DecodeChange([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeChange([]byte(`{"documentId":"bk-1"}`))
	assert.Error(t, err)
}

package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"cricketbook/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID("order")
	assert.Regexp(t, regexp.MustCompile(`^order_\d+_\d{6}$`), id)
}

func TestGenerateUUID(t *testing.T) {
	_, err := uuid.Parse(GenerateUUID())
	assert.NoError(t, err)
	assert.NotEqual(t, GenerateUUID(), GenerateUUID())
}

func TestUnixMilliRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	assert.True(t, now.Equal(UnixMilliToTime(TimeToUnixMilli(now))))
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "Invalid seat selection", errors.New("select at most 10 seats"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid seat selection", resp.Message)
	assert.Equal(t, "select at most 10 seats", resp.Error)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(models.Invalid("seats", "empty")))
	assert.Equal(t, http.StatusNotFound, StatusFor(fmt.Errorf("match m-1: %w", models.ErrNotFound)))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(models.ErrUnauthenticated))
	assert.Equal(t, http.StatusForbidden, StatusFor(models.ErrForbidden))
	assert.Equal(t, http.StatusConflict, StatusFor(models.ErrInvalidTransition))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	assert.True(t, BookingPending.CanTransition(BookingConfirmed))
	assert.False(t, BookingConfirmed.CanTransition(BookingPending))
	assert.False(t, BookingConfirmed.CanTransition(BookingConfirmed))
	assert.False(t, BookingPending.CanTransition(BookingPending))
}

func TestMatchStatusTransitions(t *testing.T) {
	assert.True(t, MatchActive.CanTransition(MatchDeleted))
	assert.False(t, MatchDeleted.CanTransition(MatchActive))
	assert.False(t, MatchDeleted.CanTransition(MatchDeleted))
}

func TestMatchType(t *testing.T) {
	assert.True(t, MatchT20.Valid())
	assert.True(t, MatchType("Test").Valid())
	assert.False(t, MatchType("T10").Valid())
}

func TestMatchName(t *testing.T) {
	m := Match{Team1: "India", Team2: "Australia"}
	assert.Equal(t, "India vs Australia", m.Name())
}

func TestValidationError(t *testing.T) {
	err := Invalid("seats", "select at most %d seats", 10)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "seats: select at most 10 seats", err.Error())
	assert.False(t, IsValidation(ErrNotFound))
}

func TestSessionIsAdmin(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.IsAdmin())
	assert.True(t, (&Session{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&Session{Role: RoleUser}).IsAdmin())
}

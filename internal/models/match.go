package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type MatchStatus string

const (
	MatchActive  MatchStatus = "active"
	MatchDeleted MatchStatus = "deleted"
)

// CanTransition reports whether a match may move from s to next. Deletion is
// one-way; a deleted match is never revived.
func (s MatchStatus) CanTransition(next MatchStatus) bool {
	return s == MatchActive && next == MatchDeleted
}

type MatchType string

const (
	MatchT20  MatchType = "T20"
	MatchODI  MatchType = "ODI"
	MatchTest MatchType = "Test"
)

func (t MatchType) Valid() bool {
	switch t {
	case MatchT20, MatchODI, MatchTest:
		return true
	}
	return false
}

type Match struct {
	bun.BaseModel `bun:"table:matches"`

	ID             string      `bun:"id,pk" json:"id" firestore:"-"`
	Team1          string      `bun:"team1,notnull" json:"team1" firestore:"team1"`
	Team1Flag      string      `bun:"team1_flag" json:"team1Flag" firestore:"team1Flag"`
	Team2          string      `bun:"team2,notnull" json:"team2" firestore:"team2"`
	Team2Flag      string      `bun:"team2_flag" json:"team2Flag" firestore:"team2Flag"`
	MatchType      MatchType   `bun:"match_type,notnull" json:"matchType" firestore:"matchType"`
	Venue          string      `bun:"venue,notnull" json:"venue" firestore:"venue"`
	Date           time.Time   `bun:"date,notnull" json:"date" firestore:"date"`
	BasePrice      int64       `bun:"base_price,notnull" json:"basePrice" firestore:"basePrice"`
	AvailableSeats int         `bun:"available_seats,notnull" json:"availableSeats" firestore:"availableSeats"`
	Status         MatchStatus `bun:"status,notnull" json:"status" firestore:"status"`
	CreatedAt      time.Time   `bun:"created_at,notnull" json:"createdAt" firestore:"createdAt"`
}

// Name is the fixture title used on tickets and in emails.
func (m Match) Name() string {
	return fmt.Sprintf("%s vs %s", m.Team1, m.Team2)
}

func (m Match) Deleted() bool {
	return m.Status == MatchDeleted
}

// MatchInput carries the admin-editable fields of a match.
type MatchInput struct {
	Team1          string    `json:"team1"`
	Team1Flag      string    `json:"team1Flag"`
	Team2          string    `json:"team2"`
	Team2Flag      string    `json:"team2Flag"`
	MatchType      MatchType `json:"matchType"`
	Venue          string    `json:"venue"`
	Date           time.Time `json:"date"`
	BasePrice      int64     `json:"basePrice"`
	AvailableSeats int       `json:"availableSeats"`
}

package main

import (
	"time"

	"cricketbook/internal/models"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

// sampleMatches is the demo catalog loaded by `cricketctl seed`.
func sampleMatches() []models.MatchInput {
	return []models.MatchInput{
		{
			Team1:          "India",
			Team1Flag:      "🇮🇳",
			Team2:          "Australia",
			Team2Flag:      "🇦🇺",
			MatchType:      models.MatchT20,
			Venue:          "Wankhede Stadium, Mumbai",
			Date:           time.Date(2026, 2, 20, 19, 0, 0, 0, ist),
			BasePrice:      1500,
			AvailableSeats: 500,
		},
		{
			Team1:          "India",
			Team1Flag:      "🇮🇳",
			Team2:          "England",
			Team2Flag:      "🏴",
			MatchType:      models.MatchODI,
			Venue:          "Eden Gardens, Kolkata",
			Date:           time.Date(2026, 2, 25, 14, 0, 0, 0, ist),
			BasePrice:      2000,
			AvailableSeats: 600,
		},
		{
			Team1:          "India",
			Team1Flag:      "🇮🇳",
			Team2:          "South Africa",
			Team2Flag:      "🇿🇦",
			MatchType:      models.MatchT20,
			Venue:          "M. Chinnaswamy Stadium, Bangalore",
			Date:           time.Date(2026, 3, 1, 19, 30, 0, 0, ist),
			BasePrice:      1800,
			AvailableSeats: 450,
		},
	}
}

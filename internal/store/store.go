package store

import (
	"context"
	"fmt"

	"cricketbook/internal/auth"
	authdb "cricketbook/internal/auth/db"
	"cricketbook/internal/booking"
	bookingdb "cricketbook/internal/booking/db"
	"cricketbook/internal/config"
	"cricketbook/internal/database"
	"cricketbook/internal/logger"
	"cricketbook/internal/matches"
	matchdb "cricketbook/internal/matches/db"
	"cricketbook/internal/scan"
	scandb "cricketbook/internal/scan/db"
	fsstore "cricketbook/internal/store/firestore"

	"github.com/uptrace/bun"
)

const (
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"
)

// Repositories is the storage backend selected by STORE_DRIVER. All fields
// share one database.
type Repositories struct {
	Matches  matches.DBLayer
	Bookings booking.DBLayer
	Users    auth.UserDB
	Scans    scan.DBLayer

	// Bun is only set for the postgres driver.
	Bun   *bun.DB
	close func() error
}

func (r *Repositories) Close() error {
	return r.close()
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Repositories, error) {
	switch cfg.Store.Driver {
	case DriverFirestore:
		fs, err := fsstore.Connect(ctx, cfg.Store.FirestoreProject, logger)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Matches:  fs,
			Bookings: fs,
			Users:    fs,
			Scans:    fs,
			close:    fs.Close,
		}, nil

	case DriverPostgres:
		bunDB, err := database.Connect(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return FromBun(bunDB), nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
}

// FromBun wires the relational repositories onto an open bun database.
func FromBun(bunDB *bun.DB) *Repositories {
	return &Repositories{
		Matches:  &matchdb.DB{Bun: bunDB},
		Bookings: &bookingdb.DB{Bun: bunDB},
		Users:    &authdb.DB{Bun: bunDB},
		Scans:    &scandb.DB{Bun: bunDB},
		Bun:      bunDB,
		close:    bunDB.Close,
	}
}

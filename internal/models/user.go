package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type UserProfile struct {
	bun.BaseModel `bun:"table:users"`

	ID           string    `bun:"id,pk" json:"id" firestore:"-"`
	Email        string    `bun:"email,unique,notnull" json:"email" firestore:"email"`
	Name         string    `bun:"name,notnull" json:"name" firestore:"name"`
	Phone        string    `bun:"phone" json:"phone" firestore:"phone"`
	Role         Role      `bun:"role,notnull" json:"role" firestore:"role"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-" firestore:"passwordHash"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt" firestore:"createdAt"`
}

func (u UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}

package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Organization struct {
	ID        string
	Name      string
	Slug      string
	Logo      pgtype.Text
	Metadata  pgtype.Text
	CreatedAt time.Time
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Member struct {
	ID             string
	OrganizationID string
	UserID         string
	Role           string
	CreatedAt      time.Time
}

type Invitation struct {
	ID             uuid.UUID
	OrganizationID string
	Email          string
	Role           string
	Status         string
	ExpiresAt      time.Time
	InviterID      string
	CreatedAt      time.Time
}

type PermissionGroup struct {
	ID             int64
	Name           string
	IsAdmin        bool
	IsDefault      bool
	OrganizationID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type MemberPermissionGroup struct {
	ID                int64
	MemberID          string
	PermissionGroupID int64
	CreatedAt         time.Time
}

type Store struct {
	ID             string
	Name           string
	Slug           string
	IsOpen         bool
	OrganizationID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type MenuGroup struct {
	ID             int64
	Name           string
	OrganizationID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MenuDetails is an immutable snapshot of a menu's displayed content.
// Edits insert a new row; existing rows are never updated.
type MenuDetails struct {
	ID          int64
	Name        string
	Description pgtype.Text
	ImageUrl    pgtype.Text
	Sale        pgtype.Numeric
	Cost        pgtype.Numeric
	CreatedAt   time.Time
}

type Menu struct {
	ID            int64
	MenuGroupID   int64
	MenuDetailsID int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type StoreMenu struct {
	ID        int64
	StoreID   string
	MenuID    int64
	CreatedAt time.Time
}

type Order struct {
	ID             int64
	StoreID        string
	TableName      string
	CompletedAt    pgtype.Timestamptz
	CompletedValue pgtype.Numeric
	Remarks        pgtype.Text
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OrderItem struct {
	ID            int64
	OrderID       int64
	MenuDetailsID int64
	Quantity      int32
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

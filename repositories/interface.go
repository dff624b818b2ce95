package repositories

import (
	"context"
	"errors"

	"lung-server/entities"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("duplicate key")

type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

type PatientRepository interface {
	// CreateWithImage stores the image blob (if new) and the record in one transaction.
	CreateWithImage(ctx context.Context, record *entities.PatientRecord, image *entities.CTImage) error
	GetByUserID(ctx context.Context, userID string) ([]entities.PatientRecord, error)
	GetImages(ctx context.Context, digests []string) (map[string][]byte, error)
}

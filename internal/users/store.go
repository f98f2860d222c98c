package users

import (
	"context"
	"errors"
)

// User is the account record. Passwords are stored and compared as
// plaintext, matching the legacy platform; there is no credential hashing
// layer in front of this table.
type User struct {
	ID       int64   `json:"id"`
	Phone    string  `json:"phone"`
	Password string  `json:"-"`
	Paid     string  `json:"paid"` // "yes"|"no", set on purchase approval
	Courses  []int64 `json:"courses"`
}

var (
	ErrNotFound           = errors.New("user not found")
	ErrExists             = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid phone or password")
)

type Store interface {
	// Create registers a new account with no purchases and an empty
	// session mapping. ErrExists when the phone is taken.
	Create(ctx context.Context, phone, password string) (User, error)

	// Authenticate matches phone and password exactly.
	Authenticate(ctx context.Context, phone, password string) (User, error)

	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	UpdatePhone(ctx context.Context, id int64, phone string) (User, error)
	Delete(ctx context.Context, id int64) error

	// Enroll unions courseIDs into the user's purchased set and returns
	// the updated list. Read-modify-write, same consistency caveat as the
	// session mapping.
	Enroll(ctx context.Context, phone string, courseIDs []int64) ([]int64, error)

	// CourseIDs returns the user's purchased course IDs.
	CourseIDs(ctx context.Context, phone string) ([]int64, error)
}

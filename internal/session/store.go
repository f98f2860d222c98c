package session

import (
	"context"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

// Store persists the per-user test-session mapping.
//
// Save is a read-modify-write with no locking: the current mapping is
// loaded, merged key-wise with the partial update (an incoming test ID
// replaces that entry wholesale, other test IDs are left untouched) and
// written back. Two concurrent saves for the same user can interleave so
// that the later write wins for overlapping test IDs; this lost-update
// window is a known gap carried over from the original platform.
type Store interface {
	// Load returns the full mapping for a user. ErrUserNotFound when no
	// user record exists. A stored blob that fails to parse is treated as
	// an empty mapping, logged, never surfaced.
	Load(ctx context.Context, phone string) (UserTests, error)

	// Save merges partial into the stored mapping and writes it back.
	// Derived progress fields are recomputed by the caller before saving.
	Save(ctx context.Context, phone string, partial UserTests) error

	// GradeDescriptive sets the admin-assigned score for one desc question
	// of one test, creating the DescriptiveScores map (and the test entry)
	// when absent, then re-saves through the same merge path.
	GradeDescriptive(ctx context.Context, phone, testID string, questionIndex int, score float64) error
}

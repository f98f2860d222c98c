package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("not found")

// Store is the catalog's persistence contract: course and test records,
// questions/videos carried as JSON blobs in the row.
type Store interface {
	ListTests(ctx context.Context) ([]Test, error)
	GetTest(ctx context.Context, id int64) (Test, error)
	CreateTest(ctx context.Context, t Test) (Test, error)
	UpdateTest(ctx context.Context, t Test) (Test, error)
	DeleteTest(ctx context.Context, id int64) error

	ListCourses(ctx context.Context) ([]Course, error)
	GetCourse(ctx context.Context, id int64) (Course, error)
	GetCourses(ctx context.Context, ids []int64) ([]Course, error)
	CreateCourse(ctx context.Context, c Course) (Course, error)
	UpdateCourse(ctx context.Context, c Course) (Course, error)
	DeleteCourse(ctx context.Context, id int64) error
}

// parseVideos decodes the stored video list. Historical rows hold either a
// JSON array or a bare comma-separated string; unparsable input degrades to
// the comma split, then to an empty list.
func parseVideos(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var vids []string
	if err := json.Unmarshal([]byte(raw), &vids); err == nil {
		return vids
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

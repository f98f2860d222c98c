package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestParseVideos(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"json array", `["intro.mp4","ch1.mp4"]`, []string{"intro.mp4", "ch1.mp4"}},
		{"legacy comma list", "intro.mp4, ch1.mp4", []string{"intro.mp4", "ch1.mp4"}},
		{"legacy single", "intro.mp4", []string{"intro.mp4"}},
		{"garbage commas", ", ,", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseVideos(tc.raw); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("parseVideos(%q) = %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestMemoryStore_TestCRUD(t *testing.T) {
	st := NewInMemoryStore()
	ctx := context.Background()

	created, err := st.CreateTest(ctx, Test{
		Title: "Mock 1",
		Questions: []Question{
			{Index: 0, Type: "mcq", Correct: "a", Options: &Options{A: "1", B: "2", C: "3", D: "4"}},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("create did not assign an ID")
	}

	got, err := st.GetTest(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Mock 1" || len(got.Questions) != 1 {
		t.Fatalf("get returned %+v", got)
	}

	got.Title = "Mock 1 (revised)"
	if _, err := st.UpdateTest(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = st.GetTest(ctx, created.ID)
	if got.Title != "Mock 1 (revised)" {
		t.Fatalf("update not applied: %q", got.Title)
	}

	if err := st.DeleteTest(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.GetTest(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.DeleteTest(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_GetCourses(t *testing.T) {
	st := NewInMemoryStore()
	ctx := context.Background()

	c1, _ := st.CreateCourse(ctx, Course{Name: "Physics"})
	c2, _ := st.CreateCourse(ctx, Course{Name: "Maths"})

	// Unknown IDs are skipped, not an error.
	got, err := st.GetCourses(ctx, []int64{c2.ID, 999, c1.ID})
	if err != nil {
		t.Fatalf("get courses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(got))
	}
	if got[0].ID != c1.ID || got[1].ID != c2.ID {
		t.Fatalf("expected ID order, got %+v", got)
	}

	got, err = st.GetCourses(ctx, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty ID list: got %v, %v", got, err)
	}
}

func TestOptionsLookup(t *testing.T) {
	o := &Options{A: "one", B: "two", C: "three", D: "four"}
	if o.Option("b") != "two" || o.Option("B") != "two" {
		t.Fatalf("letter lookup failed")
	}
	if o.Option("e") != "" {
		t.Fatalf("unknown letter returned text")
	}
	var nilOpts *Options
	if nilOpts.Option("a") != "" {
		t.Fatalf("nil options returned text")
	}
}

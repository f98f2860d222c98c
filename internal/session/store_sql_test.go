package session_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/amitacademy/testseries/internal/db"
	"github.com/amitacademy/testseries/internal/session"
)

func openTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

func seedUser(t *testing.T, dbh *sql.DB, phone, blob string) {
	t.Helper()
	if _, err := dbh.Exec(
		`INSERT INTO users (phone,password,paid,courses_json,testsession_json)
		 VALUES ($1,'pw','no','[]',$2)`, phone, blob); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestSQLStore_CorruptBlobRecovers(t *testing.T) {
	dbh := openTestDB(t, "session_corrupt")
	seedUser(t, dbh, "111", `{definitely not json`)
	st := session.NewSQLStore(dbh, zap.NewNop())
	ctx := context.Background()

	// The unparsable blob serves as an empty mapping, not an error.
	m, err := st.Load(ctx, "111")
	if err != nil {
		t.Fatalf("load over corrupt blob: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("corrupt blob decoded to %v, want empty mapping", m)
	}

	// And the next save overwrites the junk with a valid blob.
	entry := session.Fresh(3)
	entry.Answers[0] = "b"
	if err := st.Save(ctx, "111", session.UserTests{"1": entry}); err != nil {
		t.Fatalf("save after corrupt blob: %v", err)
	}
	m, err = st.Load(ctx, "111")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if m["1"].Answers[0] != "b" {
		t.Fatalf("saved entry lost: %+v", m)
	}
}

func TestSQLStore_MergeAcrossSaves(t *testing.T) {
	dbh := openTestDB(t, "session_merge")
	seedUser(t, dbh, "111", `{}`)
	st := session.NewSQLStore(dbh, zap.NewNop())
	ctx := context.Background()

	a := session.Fresh(3)
	a.Answers[0] = "b"
	if err := st.Save(ctx, "111", session.UserTests{"1": a}); err != nil {
		t.Fatalf("save test 1: %v", err)
	}
	b := session.Fresh(5)
	b.Answers[2] = "d"
	b.Completed = true
	if err := st.Save(ctx, "111", session.UserTests{"2": b}); err != nil {
		t.Fatalf("save test 2: %v", err)
	}

	m, err := st.Load(ctx, "111")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("mapping has %d entries, want 2 after key-wise merge", len(m))
	}
	if m["1"].Answers[0] != "b" || !m["2"].Completed {
		t.Fatalf("merged mapping lost state: %+v", m)
	}
}

func TestSQLStore_UnknownUser(t *testing.T) {
	dbh := openTestDB(t, "session_unknown")
	st := session.NewSQLStore(dbh, zap.NewNop())
	ctx := context.Background()

	if _, err := st.Load(ctx, "999"); !errors.Is(err, session.ErrUserNotFound) {
		t.Fatalf("load: expected ErrUserNotFound, got %v", err)
	}
	if err := st.Save(ctx, "999", session.UserTests{"1": session.Fresh(1)}); !errors.Is(err, session.ErrUserNotFound) {
		t.Fatalf("save: expected ErrUserNotFound, got %v", err)
	}
}

func TestSQLStore_GradeDescriptiveLazyEntry(t *testing.T) {
	dbh := openTestDB(t, "session_grade")
	seedUser(t, dbh, "111", `{}`)
	st := session.NewSQLStore(dbh, zap.NewNop())
	ctx := context.Background()

	if err := st.GradeDescriptive(ctx, "111", "7", 2, 0.5); err != nil {
		t.Fatalf("grade: %v", err)
	}
	m, err := st.Load(ctx, "111")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := m["7"].DescriptiveScores[2]; got != 0.5 {
		t.Fatalf("score = %g, want 0.5", got)
	}
	if m["7"].Answers == nil {
		t.Fatalf("lazily created entry has a nil answer map")
	}
}

package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"

	"go.uber.org/zap"
)

type SQLStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLStore(db *sql.DB, log *zap.Logger) *SQLStore {
	return &SQLStore{db: db, log: log}
}

func (s *SQLStore) Create(ctx context.Context, phone, password string) (User, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE phone=$1`, phone).Scan(&exists)
	switch {
	case err == nil:
		return User{}, ErrExists
	case !errors.Is(err, sql.ErrNoRows):
		return User{}, err
	}

	var u User
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (phone,password,paid,courses_json,testsession_json)
		 VALUES ($1,$2,'no','[]','{}') RETURNING id`, phone, password)
	if err := row.Scan(&u.ID); err != nil {
		return User{}, err
	}
	u.Phone = phone
	u.Paid = "no"
	u.Courses = []int64{}
	return u, nil
}

func (s *SQLStore) Authenticate(ctx context.Context, phone, password string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,phone,paid,courses_json FROM users WHERE phone=$1 AND password=$2`, phone, password)
	u, err := s.scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	return u, err
}

func (s *SQLStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,phone,paid,courses_json FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := s.scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,phone,paid,courses_json FROM users WHERE id=$1`, id)
	u, err := s.scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *SQLStore) UpdatePhone(ctx context.Context, id int64, phone string) (User, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET phone=$1 WHERE id=$2`, phone, id)
	if err != nil {
		return User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Enroll(ctx context.Context, phone string, courseIDs []int64) ([]int64, error) {
	// Read-modify-write without locking, like the session mapping.
	current, err := s.CourseIDs(ctx, phone)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{}, len(current))
	merged := append([]int64{}, current...)
	for _, id := range current {
		seen[id] = struct{}{}
	}
	for _, id := range courseIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })

	buf, _ := json.Marshal(merged)
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET courses_json=$1 WHERE phone=$2`, string(buf), phone); err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *SQLStore) CourseIDs(ctx context.Context, phone string) ([]int64, error) {
	row := s.db.QueryRowContext(ctx, `SELECT courses_json FROM users WHERE phone=$1`, phone)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.decodeCourses(phone, raw), nil
}

func (s *SQLStore) scanUser(scan func(...interface{}) error) (User, error) {
	var u User
	var raw string
	if err := scan(&u.ID, &u.Phone, &u.Paid, &raw); err != nil {
		return User{}, err
	}
	u.Courses = s.decodeCourses(u.Phone, raw)
	return u, nil
}

// decodeCourses parses the purchased-course list; corrupt rows degrade to
// an empty list instead of failing the login.
func (s *SQLStore) decodeCourses(phone, raw string) []int64 {
	if raw == "" {
		return []int64{}
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		if s.log != nil {
			s.log.Warn("unparsable courses blob, starting empty",
				zap.String("phone", phone), zap.Error(err))
		}
		return []int64{}
	}
	return ids
}

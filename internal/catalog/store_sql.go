package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type SQLStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLStore(db *sql.DB, log *zap.Logger) *SQLStore {
	return &SQLStore{db: db, log: log}
}

func (s *SQLStore) ListTests(ctx context.Context) ([]Test, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,description,price,image,questions_json FROM tests ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Test
	for rows.Next() {
		t, err := scanTest(rows.Scan, s.log)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetTest(ctx context.Context, id int64) (Test, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,description,price,image,questions_json FROM tests WHERE id=$1`, id)
	t, err := scanTest(row.Scan, s.log)
	if errors.Is(err, sql.ErrNoRows) {
		return Test{}, ErrNotFound
	}
	return t, err
}

func (s *SQLStore) CreateTest(ctx context.Context, t Test) (Test, error) {
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return Test{}, fmt.Errorf("encode questions: %w", err)
	}
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO tests (title,description,price,image,questions_json,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		t.Title, t.Description, t.Price, t.Image, string(qj), time.Now().Unix())
	if err := row.Scan(&t.ID); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) UpdateTest(ctx context.Context, t Test) (Test, error) {
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return Test{}, fmt.Errorf("encode questions: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tests SET title=$1, description=$2, price=$3, image=$4, questions_json=$5 WHERE id=$6`,
		t.Title, t.Description, t.Price, t.Image, string(qj), t.ID)
	if err != nil {
		return Test{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Test{}, ErrNotFound
	}
	return t, nil
}

func (s *SQLStore) DeleteTest(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListCourses(ctx context.Context) ([]Course, error) {
	return s.queryCourses(ctx,
		`SELECT id,coursename,coursepic,coursedesc,duration,coursevids,price FROM courses ORDER BY id`)
}

func (s *SQLStore) GetCourse(ctx context.Context, id int64) (Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,coursename,coursepic,coursedesc,duration,coursevids,price FROM courses WHERE id=$1`, id)
	c, err := scanCourse(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	return c, err
}

func (s *SQLStore) GetCourses(ctx context.Context, ids []int64) ([]Course, error) {
	if len(ids) == 0 {
		return []Course{}, nil
	}
	ph := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := fmt.Sprintf(
		`SELECT id,coursename,coursepic,coursedesc,duration,coursevids,price FROM courses WHERE id IN (%s) ORDER BY id`,
		strings.Join(ph, ","))
	return s.queryCourses(ctx, q, args...)
}

func (s *SQLStore) CreateCourse(ctx context.Context, c Course) (Course, error) {
	vj, _ := json.Marshal(c.Videos)
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO courses (coursename,coursepic,coursedesc,duration,coursevids,price)
		 VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		c.Name, c.Pic, c.Desc, c.Duration, string(vj), c.Price)
	if err := row.Scan(&c.ID); err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) UpdateCourse(ctx context.Context, c Course) (Course, error) {
	vj, _ := json.Marshal(c.Videos)
	res, err := s.db.ExecContext(ctx,
		`UPDATE courses SET coursename=$1, coursepic=$2, coursedesc=$3, duration=$4, coursevids=$5, price=$6 WHERE id=$7`,
		c.Name, c.Pic, c.Desc, c.Duration, string(vj), c.Price, c.ID)
	if err != nil {
		return Course{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Course{}, ErrNotFound
	}
	return c, nil
}

func (s *SQLStore) DeleteCourse(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) queryCourses(ctx context.Context, q string, args ...interface{}) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		c, err := scanCourse(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanTest(scan func(...interface{}) error, log *zap.Logger) (Test, error) {
	var t Test
	var qjson string
	if err := scan(&t.ID, &t.Title, &t.Description, &t.Price, &t.Image, &qjson); err != nil {
		return Test{}, err
	}
	// The questions column is a JSON-encoded string; a row that fails to
	// decode serves as an empty test rather than failing the request.
	if err := json.Unmarshal([]byte(qjson), &t.Questions); err != nil {
		if log != nil {
			log.Warn("unparsable questions blob, serving empty list",
				zap.Int64("test_id", t.ID), zap.Error(err))
		}
		t.Questions = []Question{}
	}
	return t, nil
}

func scanCourse(scan func(...interface{}) error) (Course, error) {
	var c Course
	var vids string
	if err := scan(&c.ID, &c.Name, &c.Pic, &c.Desc, &c.Duration, &vids, &c.Price); err != nil {
		return Course{}, err
	}
	c.Videos = parseVideos(vids)
	return c, nil
}

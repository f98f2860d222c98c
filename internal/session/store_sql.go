package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
)

// SQLStore keeps the whole mapping in the users.testsession_json column,
// one blob per user.
type SQLStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLStore(db *sql.DB, log *zap.Logger) *SQLStore {
	return &SQLStore{db: db, log: log}
}

func (s *SQLStore) Load(ctx context.Context, phone string) (UserTests, error) {
	row := s.db.QueryRowContext(ctx, `SELECT testsession_json FROM users WHERE phone=$1`, phone)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.decode(phone, raw), nil
}

func (s *SQLStore) Save(ctx context.Context, phone string, partial UserTests) error {
	// Read-modify-write, deliberately without a transaction or row lock:
	// concurrent saves for the same user may interleave and the later
	// write wins for overlapping test IDs (see Store docs).
	current, err := s.Load(ctx, phone)
	if err != nil {
		return err
	}
	for id, st := range partial {
		current[id] = st
	}
	buf, err := json.Marshal(current)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE users SET testsession_json=$1 WHERE phone=$2`, string(buf), phone)
	return err
}

func (s *SQLStore) GradeDescriptive(ctx context.Context, phone, testID string, questionIndex int, score float64) error {
	current, err := s.Load(ctx, phone)
	if err != nil {
		return err
	}
	st := current[testID]
	if st.Answers == nil {
		st.Answers = map[int]string{}
	}
	if st.DescriptiveScores == nil {
		st.DescriptiveScores = map[int]float64{}
	}
	st.DescriptiveScores[questionIndex] = score
	return s.Save(ctx, phone, UserTests{testID: st})
}

// decode parses the stored blob; unparsable text degrades to an empty
// mapping so a corrupt row never takes the user's whole account down.
func (s *SQLStore) decode(phone, raw string) UserTests {
	if raw == "" {
		return UserTests{}
	}
	var m UserTests
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		if s.log != nil {
			s.log.Warn("unparsable testsession blob, starting empty",
				zap.String("phone", phone), zap.Error(err))
		}
		return UserTests{}
	}
	if m == nil {
		return UserTests{}
	}
	return m
}

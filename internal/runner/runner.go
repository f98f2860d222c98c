// Package runner drives one user's pass through one test: navigation,
// answer capture, debounced auto-save, resume/restart, submission gating
// and reattempt. It is the in-process counterpart of the browser test
// screen; the session store behind it is the only side-effect channel.
package runner

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/amitacademy/testseries/internal/catalog"
	"github.com/amitacademy/testseries/internal/debounce"
	"github.com/amitacademy/testseries/internal/grading"
	"github.com/amitacademy/testseries/internal/session"
)

type State int

const (
	StateLoading State = iota
	StateFresh
	StateResuming
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateFresh:
		return "fresh"
	case StateResuming:
		return "resuming"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

var (
	ErrNotLoaded       = errors.New("test not loaded")
	ErrChoiceRequired  = errors.New("resume or restart required")
	ErrOutOfRange      = errors.New("question index out of range")
	ErrNotAttempted    = errors.New("current question not attempted")
	ErrAlreadyComplete = errors.New("test already submitted")
	ErrNotCompleted    = errors.New("test not submitted")
)

// TestSource is the slice of the catalog the runner needs.
type TestSource interface {
	GetTest(ctx context.Context, id int64) (catalog.Test, error)
}

const (
	defaultSaveDelay   = 2 * time.Second
	defaultSaveTimeout = 10 * time.Second
)

type Config struct {
	Phone    string
	TestID   int64
	Catalog  TestSource
	Sessions session.Store
	Logger   *zap.Logger

	// SaveDelay is the auto-save quiet window; zero means 2s.
	SaveDelay time.Duration
	// SaveTimeout bounds a debounced save fired off the timer goroutine.
	SaveTimeout time.Duration
}

type Runner struct {
	mu    sync.Mutex
	cfg   Config
	key   string // test ID as mapping key
	test  catalog.Test
	sess  session.SessionState
	state State

	deb         *debounce.Debouncer
	saveTimeout time.Duration
	log         *zap.Logger
}

func New(cfg Config) *Runner {
	delay := cfg.SaveDelay
	if delay <= 0 {
		delay = defaultSaveDelay
	}
	timeout := cfg.SaveTimeout
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		cfg:         cfg,
		key:         strconv.FormatInt(cfg.TestID, 10),
		state:       StateLoading,
		deb:         debounce.New(delay),
		saveTimeout: timeout,
		log:         log.With(zap.String("phone", cfg.Phone), zap.Int64("test_id", cfg.TestID)),
	}
}

// Load fetches the test definition and the user's session mapping
// concurrently, then decides the entry state: a missing entry starts fresh
// and is persisted immediately, a completed entry goes straight to the
// report, an entry with answers demands an explicit resume/restart choice.
func (r *Runner) Load(ctx context.Context) (State, error) {
	var (
		wg   sync.WaitGroup
		t    catalog.Test
		terr error
		m    session.UserTests
		merr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		t, terr = r.cfg.Catalog.GetTest(ctx, r.cfg.TestID)
	}()
	go func() {
		defer wg.Done()
		m, merr = r.cfg.Sessions.Load(ctx, r.cfg.Phone)
	}()
	wg.Wait()
	if terr != nil {
		return StateLoading, terr
	}
	if merr != nil {
		return StateLoading, merr
	}

	r.mu.Lock()
	r.test = t
	entry, ok := m[r.key]
	switch {
	case !ok:
		r.sess = session.Fresh(len(t.Questions))
		r.state = StateFresh
		r.mu.Unlock()
		r.persist(ctx)
		return StateFresh, nil
	case entry.Completed:
		r.sess = entry.Clone()
		r.sess.RecomputeProgress(len(t.Questions))
		r.state = StateCompleted
	case entry.HasAnswers():
		r.sess = entry.Clone()
		r.sess.RecomputeProgress(len(t.Questions))
		r.state = StateResuming
	default:
		r.sess = entry.Clone()
		r.sess.RecomputeProgress(len(t.Questions))
		r.state = StateFresh
	}
	st := r.state
	r.mu.Unlock()
	return st, nil
}

// Resume continues an interrupted attempt at the saved position.
func (r *Runner) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateResuming {
		return ErrChoiceRequired
	}
	r.state = StateInProgress
	return nil
}

// Restart discards the interrupted attempt and persists a fresh session.
func (r *Runner) Restart(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateResuming {
		r.mu.Unlock()
		return ErrChoiceRequired
	}
	r.sess = session.Fresh(len(r.test.Questions))
	r.state = StateInProgress
	r.mu.Unlock()
	r.persist(ctx)
	return nil
}

// Answer records the answer for the currently displayed question (option
// letter for mcq, free text for desc) and schedules a debounced auto-save:
// bursts inside the quiet window collapse into one write.
func (r *Runner) Answer(value string) error {
	r.mu.Lock()
	if err := r.interactable(); err != nil {
		r.mu.Unlock()
		return err
	}
	r.sess.Answers[r.sess.CurrentIndex] = value
	r.state = StateInProgress
	r.mu.Unlock()
	r.scheduleSave()
	return nil
}

// GoToQuestion jumps to any question, forward or backward; there is no
// sequential gating. Out-of-range targets are rejected, not clamped. The
// new position is persisted right away.
func (r *Runner) GoToQuestion(ctx context.Context, index int) error {
	r.mu.Lock()
	if err := r.interactable(); err != nil {
		r.mu.Unlock()
		return err
	}
	if index < 0 || index >= len(r.test.Questions) {
		r.mu.Unlock()
		return ErrOutOfRange
	}
	r.sess.CurrentIndex = index
	r.state = StateInProgress
	r.mu.Unlock()
	r.persist(ctx)
	return nil
}

// Submit finalizes the attempt. It only requires the currently displayed
// question to be answered, not all of them. Completed is one-way: a second
// submit is rejected with the state unchanged.
func (r *Runner) Submit(ctx context.Context) error {
	r.mu.Lock()
	if err := r.interactable(); err != nil {
		r.mu.Unlock()
		return err
	}
	if !r.attempted(r.sess.CurrentIndex) {
		r.mu.Unlock()
		return ErrNotAttempted
	}
	r.sess.Completed = true
	r.state = StateCompleted
	r.mu.Unlock()
	r.deb.Stop() // superseded by the synchronous save
	r.persist(ctx)
	return nil
}

// Reattempt resets a completed test to a fresh attempt: answers, position
// and descriptive grades are all cleared and the reset is persisted.
func (r *Runner) Reattempt(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateCompleted {
		r.mu.Unlock()
		return ErrNotCompleted
	}
	r.sess = session.Fresh(len(r.test.Questions))
	r.state = StateFresh
	r.mu.Unlock()
	r.persist(ctx)
	return nil
}

// Flush fires any pending debounced save immediately; the unload hook's
// best-effort final attempt.
func (r *Runner) Flush() {
	r.deb.Flush()
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) CurrentIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sess.CurrentIndex
}

// Question returns the currently displayed question.
func (r *Runner) Question() (catalog.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateLoading {
		return catalog.Question{}, ErrNotLoaded
	}
	if r.sess.CurrentIndex < 0 || r.sess.CurrentIndex >= len(r.test.Questions) {
		return catalog.Question{}, ErrOutOfRange
	}
	return r.test.Questions[r.sess.CurrentIndex], nil
}

// HintVisible reports whether the hint control for a question may be
// shown: only once that specific question has a non-empty answer. The rule
// is per question and re-evaluated on every render.
func (r *Runner) HintVisible(index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.test.Questions) {
		return false
	}
	if r.test.Questions[index].Hint == "" {
		return false
	}
	return r.attempted(index)
}

// CurrentAttempted reports whether the displayed question has an answer.
func (r *Runner) CurrentAttempted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempted(r.sess.CurrentIndex)
}

// Evaluation scores the current snapshot.
func (r *Runner) Evaluation() grading.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return grading.Evaluate(r.test, r.sess)
}

// Progress returns answered/total counts and the completion percentage.
func (r *Runner) Progress() (answered, total, percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sess.Clone()
	s.RecomputeProgress(len(r.test.Questions))
	if s.Total > 0 {
		percent = int(float64(s.Answered) / float64(s.Total) * 100)
	}
	return s.Answered, s.Total, percent
}

// Session returns a copy of the in-memory state, which stays authoritative
// for the lifetime of the runner even when a save has failed.
func (r *Runner) Session() session.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sess.Clone()
}

func (r *Runner) Test() catalog.Test {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.test
}

// interactable guards the navigation/answering loop. Callers hold mu.
func (r *Runner) interactable() error {
	switch r.state {
	case StateLoading:
		return ErrNotLoaded
	case StateResuming:
		return ErrChoiceRequired
	case StateCompleted:
		return ErrAlreadyComplete
	}
	return nil
}

// attempted reports a non-empty answer for the question. Callers hold mu.
func (r *Runner) attempted(index int) bool {
	if index < 0 || index >= len(r.test.Questions) {
		return false
	}
	ans, ok := r.sess.Answers[index]
	if !ok {
		return false
	}
	if r.test.Questions[index].Type == "desc" {
		return strings.TrimSpace(ans) != ""
	}
	return ans != ""
}

func (r *Runner) scheduleSave() {
	r.deb.Schedule(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.saveTimeout)
		defer cancel()
		r.persist(ctx)
	})
}

// persist snapshots the session (progress caches recomputed first) and
// pushes a single-test partial mapping to the store. Failures are logged
// and not retried; the next load may miss the unsaved mutation.
func (r *Runner) persist(ctx context.Context) {
	r.mu.Lock()
	r.sess.RecomputeProgress(len(r.test.Questions))
	snap := session.UserTests{r.key: r.sess.Clone()}
	r.mu.Unlock()

	if err := r.cfg.Sessions.Save(ctx, r.cfg.Phone, snap); err != nil {
		r.log.Warn("session save failed", zap.Error(err))
	}
}

// Package session stores recording sessions and their steps, and ties each
// active session to the live recorder feeding it.
package session

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"uirecorder/internal/capture"
	"uirecorder/internal/describe"
	"uirecorder/internal/models"
)

// Recorder is a live browser recording for one session.
type Recorder interface {
	Stop() error
	SetLanguage(code string)
	Highlight(ctx context.Context, locator string) (bool, error)
	Alive() bool
}

// Launcher opens recorders. SetLanguage applies to live and future ones.
type Launcher interface {
	Launch(s *models.Session, sink capture.Sink) (Recorder, error)
	SetLanguage(code string)
}

// Publisher receives session events for live subscribers.
type Publisher interface {
	Publish(sessionID string, v interface{})
}

// Event is what subscribers of a session receive.
type Event struct {
	Type    string               `json:"type"`
	Session string               `json:"session_id"`
	Record  *models.ActionRecord `json:"record,omitempty"`
}

const (
	EventRecord  = "record"
	EventStopped = "stopped"
)

type StepField string

const (
	FieldDescription StepField = "description"
	FieldLocator     StepField = "locator"
	FieldExpectation StepField = "expectation"
)

type StartRequest struct {
	Name   string
	URL    string
	Device string
}

// State tells a user whether one of their sessions is recording.
type State struct {
	IsRecording    bool   `json:"is_recording"`
	CurrentSession string `json:"current_session,omitempty"`
	Language       string `json:"language"`
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	repo      Repository
	launcher  Launcher
	publisher Publisher
	log       logrus.FieldLogger
	now       func() time.Time

	mu       sync.Mutex
	active   map[string]Recorder // session id; nil while launching
	byUser   map[uint]string
	language string
}

func NewService(repo Repository, launcher Launcher, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		launcher: launcher,
		log:      logrus.StandardLogger(),
		now:      time.Now,
		active:   make(map[string]Recorder),
		byUser:   make(map[uint]string),
		language: describe.DefaultLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the persisted description language and closes sessions left
// in the recording state by a previous run.
func (s *Service) Init(ctx context.Context) error {
	lang, err := s.repo.GetSetting(ctx, models.SettingLanguage)
	if err != nil {
		return fmt.Errorf("load language: %w", err)
	}
	if lang != "" {
		s.mu.Lock()
		s.language = describe.Match(lang)
		s.mu.Unlock()
	}
	s.launcher.SetLanguage(s.Language())

	if _, err := s.SweepStale(ctx); err != nil {
		return fmt.Errorf("close stale sessions: %w", err)
	}
	return nil
}

func (s *Service) Start(ctx context.Context, userID uint, req StartRequest) (*models.Session, error) {
	if err := validateURL(req.URL); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, busy := s.byUser[userID]; busy {
		s.mu.Unlock()
		return nil, ErrAlreadyRecording
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		n, err := s.repo.CountByUser(ctx, userID)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		name = fmt.Sprintf("Record %d", n+1)
	}
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		URL:       req.URL,
		Device:    req.Device,
		Language:  s.language,
		Status:    models.SessionRecording,
		StartedAt: s.now(),
	}
	if err := sess.SetActions(nil); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.active[sess.ID] = nil
	s.byUser[userID] = sess.ID
	s.mu.Unlock()

	rec, err := s.launcher.Launch(sess, s.sinkFor(sess.ID))
	if err != nil {
		s.mu.Lock()
		s.release(sess.ID, userID)
		s.mu.Unlock()
		if delErr := s.repo.Delete(ctx, sess.ID); delErr != nil {
			s.log.WithError(delErr).WithField("session", sess.ID).Warn("failed to remove unstarted session")
		}
		return nil, fmt.Errorf("launch recorder: %w", err)
	}

	s.mu.Lock()
	s.active[sess.ID] = rec
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"session": sess.ID, "user": userID, "url": req.URL}).Info("session started")
	return sess, nil
}

func (s *Service) sinkFor(id string) capture.Sink {
	return capture.SinkFunc(func(rec models.ActionRecord) {
		stored, err := s.Record(context.Background(), id, rec)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"session": id, "step": rec.Step}).Warn("record dropped")
			return
		}
		s.publish(id, Event{Type: EventRecord, Session: id, Record: &stored})
	})
}

// Stop ends the recording of a session. The recorder is stopped before the
// session is closed so that a flushed pending input is still stored.
func (s *Service) Stop(ctx context.Context, userID uint, id string) (*models.Session, error) {
	sess, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionRecording {
		return nil, ErrNotRecording
	}
	return s.stop(ctx, sess)
}

func (s *Service) stop(ctx context.Context, sess *models.Session) (*models.Session, error) {
	s.mu.Lock()
	rec := s.active[sess.ID]
	s.mu.Unlock()

	if rec != nil {
		if err := rec.Stop(); err != nil {
			s.log.WithError(err).WithField("session", sess.ID).Warn("recorder did not stop cleanly")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(sess.ID, sess.UserID)

	fresh, err := s.repo.Get(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	fresh.Status = models.SessionStopped
	fresh.StoppedAt = &now
	if err := s.repo.Save(ctx, fresh); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.countActions(fresh)

	s.publish(fresh.ID, Event{Type: EventStopped, Session: fresh.ID})
	s.log.WithFields(logrus.Fields{"session": fresh.ID, "steps": fresh.ActionCount}).Info("session stopped")
	return fresh, nil
}

// Record appends rec to an actively recording session. Steps are numbered
// by the store so numbering stays dense after step edits.
func (s *Service) Record(ctx context.Context, id string, rec models.ActionRecord) (models.ActionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[id]; !ok {
		return rec, ErrNotRecording
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return rec, err
	}
	if sess.Status != models.SessionRecording {
		return rec, ErrNotRecording
	}
	actions, err := sess.GetActions()
	if err != nil {
		return rec, err
	}
	rec.Step = len(actions) + 1
	if err := sess.SetActions(append(actions, rec)); err != nil {
		return rec, err
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return rec, fmt.Errorf("save session: %w", err)
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, userID uint) ([]models.Session, error) {
	sessions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		s.countActions(&sessions[i])
	}
	return sessions, nil
}

func (s *Service) Get(ctx context.Context, userID uint, id string) (*models.SessionDetail, error) {
	sess, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	steps, err := sess.GetActions()
	if err != nil {
		return nil, err
	}
	if steps == nil {
		steps = []models.ActionRecord{}
	}
	sess.ActionCount = len(steps)
	return &models.SessionDetail{Session: *sess, Steps: steps}, nil
}

// Delete removes a session, stopping it first when it is recording.
func (s *Service) Delete(ctx context.Context, userID uint, id string) error {
	sess, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if sess.Status == models.SessionRecording {
		if _, err := s.stop(ctx, sess); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Delete(ctx, id)
}

func (s *Service) Rename(ctx context.Context, userID uint, id, name string) (*models.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return s.update(ctx, userID, id, func(sess *models.Session, _ *[]models.ActionRecord) error {
		sess.Name = name
		return nil
	})
}

func (s *Service) UpdateDescription(ctx context.Context, userID uint, id, description string) (*models.Session, error) {
	return s.update(ctx, userID, id, func(sess *models.Session, _ *[]models.ActionRecord) error {
		sess.Description = description
		return nil
	})
}

func (s *Service) UpdatePrecondition(ctx context.Context, userID uint, id, precondition string) (*models.Session, error) {
	return s.update(ctx, userID, id, func(sess *models.Session, _ *[]models.ActionRecord) error {
		sess.Precondition = precondition
		return nil
	})
}

// UpdateStep edits one field of a recorded step.
func (s *Service) UpdateStep(ctx context.Context, userID uint, id string, step int, field StepField, value string) (*models.Session, error) {
	return s.update(ctx, userID, id, func(_ *models.Session, actions *[]models.ActionRecord) error {
		i := indexOfStep(*actions, step)
		if i < 0 {
			return ErrStepNotFound
		}
		a := &(*actions)[i]
		switch field {
		case FieldDescription:
			a.Description = value
		case FieldLocator:
			a.Locator = value
			a.LocatorStrategy = ""
		case FieldExpectation:
			a.Expectation = value
		default:
			return ErrInvalidField
		}
		return nil
	})
}

// DeleteStep removes a step and renumbers the remaining ones 1..n.
func (s *Service) DeleteStep(ctx context.Context, userID uint, id string, step int) (*models.Session, error) {
	return s.update(ctx, userID, id, func(_ *models.Session, actions *[]models.ActionRecord) error {
		i := indexOfStep(*actions, step)
		if i < 0 {
			return ErrStepNotFound
		}
		*actions = append((*actions)[:i], (*actions)[i+1:]...)
		renumber(*actions)
		return nil
	})
}

// InsertStep inserts rec after step afterStep (0 inserts at the front) and
// renumbers all steps 1..n. Positions past the end append.
func (s *Service) InsertStep(ctx context.Context, userID uint, id string, afterStep int, rec models.ActionRecord) (*models.Session, error) {
	return s.update(ctx, userID, id, func(_ *models.Session, actions *[]models.ActionRecord) error {
		pos := afterStep
		if pos < 0 {
			pos = 0
		}
		if pos > len(*actions) {
			pos = len(*actions)
		}
		if rec.Timestamp == "" {
			rec.Timestamp = models.FormatTimestamp(s.now())
		}
		out := make([]models.ActionRecord, 0, len(*actions)+1)
		out = append(out, (*actions)[:pos]...)
		out = append(out, rec)
		out = append(out, (*actions)[pos:]...)
		renumber(out)
		*actions = out
		return nil
	})
}

func (s *Service) State(userID uint) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byUser[userID]
	return State{IsRecording: ok, CurrentSession: id, Language: s.language}
}

func (s *Service) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage persists the description language and applies it to every
// live recorder.
func (s *Service) SetLanguage(ctx context.Context, code string) (string, error) {
	lang := describe.Match(code)
	if err := s.repo.SetSetting(ctx, models.SettingLanguage, lang); err != nil {
		return "", fmt.Errorf("save language: %w", err)
	}
	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
	s.launcher.SetLanguage(lang)
	return lang, nil
}

// Highlight outlines the element a locator resolves to in the live page of
// a recording session.
func (s *Service) Highlight(ctx context.Context, userID uint, id, locator string) (bool, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return false, err
	}
	s.mu.Lock()
	rec := s.active[id]
	s.mu.Unlock()
	if rec == nil || !rec.Alive() {
		return false, ErrNotRecording
	}
	return rec.Highlight(ctx, locator)
}

// SweepStale stops sessions marked as recording whose recorder is gone,
// for example because the user closed the browser window.
func (s *Service) SweepStale(ctx context.Context) (int, error) {
	sessions, err := s.repo.ListByStatus(ctx, models.SessionRecording)
	if err != nil {
		return 0, err
	}
	closed := 0
	for i := range sessions {
		sess := &sessions[i]
		s.mu.Lock()
		rec, tracked := s.active[sess.ID]
		s.mu.Unlock()
		if tracked && (rec == nil || rec.Alive()) {
			continue
		}
		if _, err := s.stop(ctx, sess); err != nil {
			s.log.WithError(err).WithField("session", sess.ID).Warn("failed to close stale session")
			continue
		}
		closed++
	}
	return closed, nil
}

// Purge deletes stopped sessions older than cutoff.
func (s *Service) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.DeleteStoppedBefore(ctx, cutoff)
}

// Shutdown stops every active recording.
func (s *Service) Shutdown(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		sess, err := s.repo.Get(ctx, id)
		if err != nil {
			continue
		}
		if _, err := s.stop(ctx, sess); err != nil {
			s.log.WithError(err).WithField("session", id).Warn("failed to stop session on shutdown")
		}
	}
}

func (s *Service) update(ctx context.Context, userID uint, id string, fn func(*models.Session, *[]models.ActionRecord) error) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	actions, err := sess.GetActions()
	if err != nil {
		return nil, err
	}
	if err := fn(sess, &actions); err != nil {
		return nil, err
	}
	if err := sess.SetActions(actions); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func (s *Service) owned(ctx context.Context, userID uint, id string) (*models.Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Service) countActions(sess *models.Session) {
	if actions, err := sess.GetActions(); err == nil {
		sess.ActionCount = len(actions)
	}
}

func (s *Service) release(id string, userID uint) {
	delete(s.active, id)
	if s.byUser[userID] == id {
		delete(s.byUser, userID)
	}
}

func (s *Service) publish(id string, ev Event) {
	if s.publisher != nil {
		s.publisher.Publish(id, ev)
	}
}

func indexOfStep(actions []models.ActionRecord, step int) int {
	for i, a := range actions {
		if a.Step == step {
			return i
		}
	}
	return -1
}

func renumber(actions []models.ActionRecord) {
	for i := range actions {
		actions[i].Step = i + 1
	}
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

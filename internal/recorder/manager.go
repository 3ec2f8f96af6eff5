package recorder

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"uirecorder/internal/capture"
	"uirecorder/internal/describe"
	"uirecorder/internal/models"
	"uirecorder/internal/session"
)

var _ session.Launcher = (*RecorderManager)(nil)

type Config struct {
	ChromePath   string
	Headless     bool
	PollInterval time.Duration
	Capture      capture.Config
}

// RecorderManager owns every live recorder, keyed by session id.
type RecorderManager struct {
	cfg Config
	log logrus.FieldLogger

	mutex     sync.RWMutex
	recorders map[string]*ChromeRecorder
	language  string

	start func(*ChromeRecorder) error
}

func NewManager(cfg Config, log logrus.FieldLogger) *RecorderManager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RecorderManager{
		cfg:       cfg,
		log:       log,
		recorders: make(map[string]*ChromeRecorder),
		language:  describe.Match(cfg.Capture.Language),
		start:     (*ChromeRecorder).Start,
	}
}

// StartRecording opens a browser on targetURL for the session. Records go to
// sink in step order.
func (rm *RecorderManager) StartRecording(sessionID, targetURL, device string, sink capture.Sink) (*ChromeRecorder, error) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	if _, exists := rm.recorders[sessionID]; exists {
		return nil, fmt.Errorf("recording session %s already exists", sessionID)
	}

	capCfg := rm.cfg.Capture
	capCfg.Language = rm.language
	rec := NewChromeRecorder(sessionID, Options{
		URL:          targetURL,
		Device:       device,
		ChromePath:   rm.cfg.ChromePath,
		Headless:     rm.cfg.Headless,
		PollInterval: rm.cfg.PollInterval,
		Capture:      capCfg,
	}, sink, rm.log)

	if err := rm.start(rec); err != nil {
		return nil, err
	}
	rm.recorders[sessionID] = rec

	go func() {
		<-rec.Done()
		rm.remove(sessionID, rec)
	}()
	return rec, nil
}

// Launch starts a recorder for a stored session.
func (rm *RecorderManager) Launch(s *models.Session, sink capture.Sink) (session.Recorder, error) {
	rec, err := rm.StartRecording(s.ID, s.URL, s.Device, sink)
	if err != nil {
		return nil, err
	}
	if s.Language != "" {
		rec.SetLanguage(s.Language)
	}
	return rec, nil
}

func (rm *RecorderManager) StopRecording(sessionID string) error {
	rec, exists := rm.GetRecorder(sessionID)
	if !exists {
		return fmt.Errorf("recording session %s not found", sessionID)
	}
	err := rec.Stop()
	rm.remove(sessionID, rec)
	return err
}

func (rm *RecorderManager) GetRecorder(sessionID string) (*ChromeRecorder, bool) {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	rec, exists := rm.recorders[sessionID]
	return rec, exists
}

// SetLanguage changes the description language of every live recorder and
// of recorders started later.
func (rm *RecorderManager) SetLanguage(code string) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	rm.language = describe.Match(code)
	for _, rec := range rm.recorders {
		rec.SetLanguage(rm.language)
	}
}

func (rm *RecorderManager) Language() string {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	return rm.language
}

// StopAll stops every live recorder; used on shutdown.
func (rm *RecorderManager) StopAll() {
	rm.mutex.RLock()
	ids := make([]string, 0, len(rm.recorders))
	for id := range rm.recorders {
		ids = append(ids, id)
	}
	rm.mutex.RUnlock()

	for _, id := range ids {
		if err := rm.StopRecording(id); err != nil {
			rm.log.WithError(err).WithField("session", id).Warn("failed to stop recorder")
		}
	}
}

func (rm *RecorderManager) remove(sessionID string, rec *ChromeRecorder) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()
	if rm.recorders[sessionID] == rec {
		delete(rm.recorders, sessionID)
	}
}

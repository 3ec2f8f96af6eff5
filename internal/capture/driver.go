// Package capture turns raw page events into numbered, described and
// located action records.
package capture

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"uirecorder/internal/describe"
	"uirecorder/internal/dom"
	"uirecorder/internal/locator"
	"uirecorder/internal/models"
	"uirecorder/internal/resolver"
)

const DefaultDebounce = 500 * time.Millisecond

type Config struct {
	// Debounce is the idle window after the last keystroke before an
	// input record is emitted.
	Debounce time.Duration
	// FlushOnStop emits a pending input when recording is disabled
	// instead of dropping it.
	FlushOnStop bool
	Language    string
}

func DefaultConfig() Config {
	return Config{
		Debounce:    DefaultDebounce,
		FlushOnStop: true,
		Language:    describe.DefaultLanguage,
	}
}

type Option func(*Driver)

func WithClock(c Clock) Option {
	return func(d *Driver) { d.clock = c }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Driver) { d.log = l }
}

// State is a snapshot of the driver's control state.
type State struct {
	Recording bool   `json:"recording"`
	Step      int    `json:"step"`
	Language  string `json:"language"`
	Pending   bool   `json:"pending"`
}

// Driver is safe for concurrent use. Events are processed one at a time;
// the debounce timer is the only source of deferred work.
type Driver struct {
	mu    sync.Mutex
	cfg   Config
	sink  Sink
	clock Clock
	log   logrus.FieldLogger

	recording bool
	step      int
	desc      *describe.Builder

	pending *RawEvent
	timer   Timer
	gen     uint64
}

func NewDriver(sink Sink, cfg Config, opts ...Option) *Driver {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	d := &Driver{
		cfg:   cfg,
		sink:  sink,
		clock: realClock{},
		log:   logrus.StandardLogger(),
		desc:  describe.New(cfg.Language),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle processes one raw event. Events arriving while recording is
// disabled are dropped without consuming a step. Non-input events are
// emitted at once and leave a pending input and its timer untouched.
func (d *Driver) Handle(ev RawEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.recording {
		return
	}
	if ev.Doc == nil || !dom.IsElement(ev.Target) {
		d.log.WithField("action", ev.Kind).Warn("event without target element dropped")
		return
	}
	ev, ok := normalize(ev)
	if !ok {
		return
	}

	if ev.Kind == models.ActionInput {
		d.scheduleLocked(ev)
		return
	}
	d.emitLocked(ev)
}

// SetRecording enables or disables recording. resetSteps restarts step
// numbering at 1.
func (d *Driver) SetRecording(enabled, resetSteps bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !enabled && d.recording {
		if d.cfg.FlushOnStop {
			d.flushLocked()
		} else {
			d.discardLocked()
		}
	}
	if resetSteps {
		d.discardLocked()
		d.step = 0
	}
	d.recording = enabled
	d.log.WithFields(logrus.Fields{"recording": enabled, "reset": resetSteps}).Debug("recording state changed")
}

func (d *Driver) SetLanguage(code string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.desc = describe.New(code)
}

func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return State{
		Recording: d.recording,
		Step:      d.step,
		Language:  d.desc.Language(),
		Pending:   d.pending != nil,
	}
}

// Close drops any pending input and stops the debounce timer.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.discardLocked()
	d.recording = false
}

func (d *Driver) scheduleLocked(ev RawEvent) {
	d.stopTimerLocked()
	d.pending = &ev
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.cfg.Debounce, func() { d.fire(gen) })
}

func (d *Driver) fire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return
	}
	d.flushLocked()
}

func (d *Driver) flushLocked() {
	if d.pending == nil {
		return
	}
	ev := *d.pending
	d.discardLocked()
	d.emitLocked(ev)
}

func (d *Driver) discardLocked() {
	d.stopTimerLocked()
	d.pending = nil
}

// stopTimerLocked cancels the debounce timer. Bumping the generation makes
// a callback that already started waiting on the lock a no-op.
func (d *Driver) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Driver) emitLocked(ev RawEvent) {
	if ev.Kind == models.ActionInput || ev.At.IsZero() {
		ev.At = d.clock.Now()
	}

	d.step++
	rec := buildRecord(ev, d.step, d.desc, d.log)

	d.log.WithFields(logrus.Fields{
		"step":     rec.Step,
		"action":   rec.Action,
		"tag":      rec.TagName,
		"strategy": rec.LocatorStrategy,
	}).Debug("action recorded")

	if d.sink != nil {
		d.sink.Record(rec)
	}
}

// Describe turns a single event into a record without debouncing or step
// numbering. Events the driver would ignore report false.
func Describe(ev RawEvent, b *describe.Builder, log logrus.FieldLogger) (models.ActionRecord, bool) {
	if ev.Doc == nil || !dom.IsElement(ev.Target) {
		return models.ActionRecord{}, false
	}
	ev, ok := normalize(ev)
	if !ok {
		return models.ActionRecord{}, false
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return buildRecord(ev, 0, b, log), true
}

func buildRecord(ev RawEvent, step int, b *describe.Builder, log logrus.FieldLogger) models.ActionRecord {
	res := resolver.Resolve(ev.Doc, ev.Target)
	label := resolver.ExtractText(ev.Doc, res.Node)
	loc := locator.New(ev.Doc, log).Synthesize(res.Node)

	rec := models.ActionRecord{
		Step:            step,
		Timestamp:       models.FormatTimestamp(ev.At),
		Action:          ev.Kind,
		Locator:         loc.Locator,
		LocatorStrategy: loc.Strategy,
		LocatorUnique:   loc.Unique,
		TagName:         dom.Tag(res.Node),
		URL:             ev.URL,
		Value:           ev.Value,
		Checked:         ev.Checked,
		SelectedText:    ev.SelectedText,
		Key:             ev.Key,
		CtrlKey:         ev.Ctrl,
		ShiftKey:        ev.Shift,
		AltKey:          ev.Alt,
	}
	rec.Description = b.Build(ev.Kind, res.Type, label, describe.ExtraFrom(rec))
	return rec
}

package capture

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"uirecorder/internal/describe"
	"uirecorder/internal/dom"
	"uirecorder/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type collector struct {
	mu   sync.Mutex
	recs []models.ActionRecord
}

func (c *collector) Record(rec models.ActionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, rec)
}

func (c *collector) all() []models.ActionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ActionRecord(nil), c.recs...)
}

const page = `<html><body>
	<form id="signup">
		<label for="mail">Email</label><input id="mail" type="email">
		<label for="nick">Nickname</label><input id="nick">
		<label for="tos">Accept Terms</label><input type="checkbox" id="tos">
		<select id="city"><option value="ist">Istanbul</option><option value="ank">Ankara</option></select>
		<button class="dropdown-toggle" type="button">Select Country</button>
		<button type="submit">Register</button>
	</form>
</body></html>`

type fixture struct {
	doc   *dom.Document
	clock *fakeClock
	sink  *collector
	drv   *Driver
}

func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Language = "en"
	for _, m := range mutate {
		m(&cfg)
	}
	logger, _ := test.NewNullLogger()
	f := &fixture{doc: doc, clock: newFakeClock(), sink: &collector{}}
	f.drv = NewDriver(f.sink, cfg, WithClock(f.clock), WithLogger(logger))
	f.drv.SetRecording(true, true)
	return f
}

func (f *fixture) event(t *testing.T, kind models.ActionKind, sel string) RawEvent {
	t.Helper()
	target := f.doc.First(sel)
	require.NotNil(t, target, sel)
	return RawEvent{Kind: kind, Doc: f.doc, Target: target, URL: "https://example.test/signup"}
}

func (f *fixture) typeText(t *testing.T, sel, value string) {
	ev := f.event(t, models.ActionInput, sel)
	ev.Value = value
	f.drv.Handle(ev)
}

func TestInputDebounceCoalesces(t *testing.T) {
	f := newFixture(t)

	f.typeText(t, "#nick", "hello")
	f.clock.Advance(200 * time.Millisecond)
	f.typeText(t, "#nick", "hello world")
	f.clock.Advance(499 * time.Millisecond)
	assert.Empty(t, f.sink.all())

	f.clock.Advance(time.Millisecond)
	recs := f.sink.all()
	require.Len(t, recs, 1)
	assert.Equal(t, "hello world", recs[0].Value)
	assert.Equal(t, models.ActionInput, recs[0].Action)
	assert.Equal(t, 1, recs[0].Step)
	assert.Equal(t, `Typed "hello world" into the "Nickname" field`, recs[0].Description)
}

func TestInputAfterIdleWindowProducesTwoRecords(t *testing.T) {
	f := newFixture(t)

	f.typeText(t, "#nick", "hello")
	f.clock.Advance(600 * time.Millisecond)
	f.typeText(t, "#nick", "world")
	f.clock.Advance(600 * time.Millisecond)

	recs := f.sink.all()
	require.Len(t, recs, 2)
	assert.Equal(t, "hello", recs[0].Value)
	assert.Equal(t, "world", recs[1].Value)
	assert.Equal(t, []int{1, 2}, []int{recs[0].Step, recs[1].Step})
}

func TestInputOnNewTargetReplacesPending(t *testing.T) {
	f := newFixture(t)

	f.typeText(t, "#mail", "a@b.c")
	f.clock.Advance(100 * time.Millisecond)
	f.typeText(t, "#nick", "neo")
	f.clock.Advance(500 * time.Millisecond)

	recs := f.sink.all()
	require.Len(t, recs, 1)
	assert.Equal(t, "neo", recs[0].Value)
	assert.Equal(t, `//input[@id="nick"]`, recs[0].Locator)
}

func TestNotableKeyDoesNotSplitTypingBurst(t *testing.T) {
	f := newFixture(t)

	f.typeText(t, "#nick", "hello")
	f.clock.Advance(100 * time.Millisecond)
	key := f.event(t, models.ActionKeyDown, "#nick")
	key.Key = "Backspace"
	f.drv.Handle(key)
	f.clock.Advance(100 * time.Millisecond)
	f.typeText(t, "#nick", "hell")
	f.clock.Advance(600 * time.Millisecond)

	recs := f.sink.all()
	require.Len(t, recs, 2)
	assert.Equal(t, models.ActionKeyDown, recs[0].Action)
	assert.Equal(t, 1, recs[0].Step)
	assert.Equal(t, models.ActionInput, recs[1].Action)
	assert.Equal(t, "hell", recs[1].Value)
	assert.Equal(t, 2, recs[1].Step)
}

func TestOtherEventsLeavePendingInputScheduled(t *testing.T) {
	f := newFixture(t)

	f.typeText(t, "#nick", "neo")
	f.clock.Advance(300 * time.Millisecond)
	f.drv.Handle(f.event(t, models.ActionClick, `button[type="submit"]`))

	recs := f.sink.all()
	require.Len(t, recs, 1)
	assert.Equal(t, models.ActionClick, recs[0].Action)
	assert.True(t, f.drv.State().Pending)

	// The deadline still counts from the last keystroke.
	f.clock.Advance(200 * time.Millisecond)
	recs = f.sink.all()
	require.Len(t, recs, 2)
	assert.Equal(t, "neo", recs[1].Value)
	assert.Equal(t, 2, recs[1].Step)
	assert.False(t, f.drv.State().Pending)
}

func TestDropdownClick(t *testing.T) {
	f := newFixture(t)
	f.drv.Handle(f.event(t, models.ActionClick, "button.dropdown-toggle"))

	recs := f.sink.all()
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, `Opened the "Select Country" dropdown`, rec.Description)
	assert.Equal(t, `//button[normalize-space()="Select Country"]`, rec.Locator)
	assert.True(t, rec.LocatorUnique)
	assert.Equal(t, "button", rec.TagName)
	assert.Equal(t, "https://example.test/signup", rec.URL)
	assert.Equal(t, "2024-03-01T10:00:00.000Z", rec.Timestamp)
}

func TestCheckboxClickDescribesState(t *testing.T) {
	f := newFixture(t)

	for _, state := range []bool{true, false} {
		checked := state
		ev := f.event(t, models.ActionClick, "#tos")
		ev.Checked = &checked
		f.drv.Handle(ev)
	}

	recs := f.sink.all()
	require.Len(t, recs, 2)
	assert.Equal(t, `Checked "Accept Terms"`, recs[0].Description)
	assert.Equal(t, `Unchecked "Accept Terms"`, recs[1].Description)
	require.NotNil(t, recs[0].Checked)
	assert.True(t, *recs[0].Checked)
	require.NotNil(t, recs[1].Checked)
	assert.False(t, *recs[1].Checked)
}

func TestRecordDoesNotAliasCallerState(t *testing.T) {
	f := newFixture(t)

	checked := true
	ev := f.event(t, models.ActionClick, "#tos")
	ev.Checked = &checked
	f.drv.Handle(ev)
	checked = false

	recs := f.sink.all()
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Checked)
	assert.True(t, *recs[0].Checked)
	assert.NotSame(t, &checked, recs[0].Checked)
}

func TestClickDropsCheckedForNonCheckbox(t *testing.T) {
	f := newFixture(t)
	checked := true
	ev := f.event(t, models.ActionClick, "button.dropdown-toggle")
	ev.Checked = &checked
	ev.Value = "ignored"
	f.drv.Handle(ev)

	recs := f.sink.all()
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].Checked)
	assert.Empty(t, recs[0].Value)
}

func TestChangeFiltering(t *testing.T) {
	f := newFixture(t)

	text := f.event(t, models.ActionChange, "#nick")
	text.Value = "neo"
	f.drv.Handle(text)
	assert.Empty(t, f.sink.all())

	sel := f.event(t, models.ActionChange, "#city")
	sel.Value = "ank"
	sel.SelectedText = "Ankara"
	f.drv.Handle(sel)

	checked := true
	box := f.event(t, models.ActionChange, "#tos")
	box.Checked = &checked
	box.Value = "on"
	f.drv.Handle(box)

	recs := f.sink.all()
	require.Len(t, recs, 2)
	assert.Equal(t, "Ankara", recs[0].SelectedText)
	assert.Equal(t, "ank", recs[0].Value)
	assert.Equal(t, "on", recs[1].Value)
	assert.Equal(t, `Checked "Accept Terms"`, recs[1].Description)
}

func TestKeyDownFiltering(t *testing.T) {
	f := newFixture(t)

	for _, key := range []string{"a", "Enter", "ArrowDown", "Tab"} {
		ev := f.event(t, models.ActionKeyDown, "#nick")
		ev.Key = key
		ev.Shift = key == "Tab"
		f.drv.Handle(ev)
	}

	recs := f.sink.all()
	require.Len(t, recs, 2)
	assert.Equal(t, "Enter", recs[0].Key)
	assert.Equal(t, "Pressed Enter", recs[0].Description)
	assert.Equal(t, "Pressed Shift+Tab", recs[1].Description)
	assert.True(t, recs[1].ShiftKey)
}

func TestRecordingGate(t *testing.T) {
	f := newFixture(t)
	f.drv.SetRecording(false, false)

	f.drv.Handle(f.event(t, models.ActionClick, "button.dropdown-toggle"))
	f.typeText(t, "#nick", "ghost")
	f.clock.Advance(time.Second)
	assert.Empty(t, f.sink.all())
	assert.Equal(t, 0, f.drv.State().Step)

	f.drv.SetRecording(true, false)
	f.drv.Handle(f.event(t, models.ActionSubmit, "#signup"))
	recs := f.sink.all()
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Step)
}

func TestStopFlushesPendingInput(t *testing.T) {
	f := newFixture(t)
	f.typeText(t, "#nick", "last words")
	f.drv.SetRecording(false, false)

	recs := f.sink.all()
	require.Len(t, recs, 1)
	assert.Equal(t, "last words", recs[0].Value)
	assert.False(t, f.drv.State().Pending)

	f.clock.Advance(time.Second)
	assert.Len(t, f.sink.all(), 1)
}

func TestStopWithoutFlushDropsPendingInput(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.FlushOnStop = false })
	f.typeText(t, "#nick", "lost")
	f.drv.SetRecording(false, false)
	f.clock.Advance(time.Second)
	assert.Empty(t, f.sink.all())
}

func TestResetSteps(t *testing.T) {
	f := newFixture(t)
	f.drv.Handle(f.event(t, models.ActionDblClick, "#nick"))
	f.drv.Handle(f.event(t, models.ActionContextMenu, "#nick"))
	assert.Equal(t, 2, f.drv.State().Step)

	f.drv.SetRecording(true, true)
	f.drv.Handle(f.event(t, models.ActionClick, "#nick"))
	recs := f.sink.all()
	require.Len(t, recs, 3)
	assert.Equal(t, 1, recs[2].Step)
}

func TestSetLanguage(t *testing.T) {
	f := newFixture(t)
	f.drv.SetLanguage("tr-TR")
	assert.Equal(t, "tr", f.drv.State().Language)

	f.drv.Handle(f.event(t, models.ActionClick, "button.dropdown-toggle"))
	recs := f.sink.all()
	require.Len(t, recs, 1)
	assert.Equal(t, `"Select Country" açılır listesi açıldı`, recs[0].Description)
}

func TestInvalidEventsAreDropped(t *testing.T) {
	f := newFixture(t)
	f.drv.Handle(RawEvent{Kind: models.ActionClick})
	f.drv.Handle(RawEvent{Kind: models.ActionKind("scroll"), Doc: f.doc, Target: f.doc.First("#nick")})
	assert.Empty(t, f.sink.all())
	assert.Equal(t, 0, f.drv.State().Step)
}

func TestRealClockDebounce(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	sink := &collector{}
	logger, _ := test.NewNullLogger()
	drv := NewDriver(sink, Config{Debounce: 20 * time.Millisecond, Language: "en"}, WithLogger(logger))
	drv.SetRecording(true, true)
	defer drv.Close()

	drv.Handle(RawEvent{Kind: models.ActionInput, Doc: doc, Target: doc.First("#nick"), Value: "x"})
	require.Eventually(t, func() bool { return len(sink.all()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestMultiSink(t *testing.T) {
	a, b := &collector{}, &collector{}
	var calls int
	m := MultiSink{a, nil, b, SinkFunc(func(models.ActionRecord) { calls++ })}
	m.Record(models.ActionRecord{Step: 7})
	assert.Len(t, a.all(), 1)
	assert.Len(t, b.all(), 1)
	assert.Equal(t, 1, calls)
}

func TestDescribeSingleEvent(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	ev := f.event(t, models.ActionClick, "button.dropdown-toggle")
	ev.At = at
	rec, ok := Describe(ev, describe.New("en"), nil)
	require.True(t, ok)
	assert.Equal(t, 0, rec.Step)
	assert.Equal(t, "2024-05-01T09:00:00.000Z", rec.Timestamp)
	assert.Equal(t, `Opened the "Select Country" dropdown`, rec.Description)
	assert.True(t, rec.LocatorUnique)

	_, ok = Describe(f.event(t, models.ActionChange, "#nick"), describe.New("en"), nil)
	assert.False(t, ok)
	_, ok = Describe(RawEvent{Kind: models.ActionClick}, describe.New("en"), nil)
	assert.False(t, ok)
	assert.Empty(t, f.sink.all(), "Describe does not touch the driver")
}

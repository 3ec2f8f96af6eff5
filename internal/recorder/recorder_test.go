package recorder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uirecorder/internal/capture"
	"uirecorder/internal/dom"
	"uirecorder/internal/models"
)

func TestPageEventToRaw(t *testing.T) {
	checked := true
	e := pageEvent{
		Kind:      "change",
		HTML:      `<html><body><input type="checkbox" id="tos" data-uir-target="1"></body></html>`,
		URL:       "https://example.test/",
		Timestamp: 1714566615123,
		Value:     "on",
		Checked:   &checked,
	}
	ev, err := e.toRaw()
	require.NoError(t, err)
	assert.Equal(t, models.ActionChange, ev.Kind)
	assert.Equal(t, "tos", dom.ID(ev.Target))
	assert.False(t, dom.HasAttr(ev.Target, dom.TargetMarker))
	assert.Equal(t, "on", ev.Value)
	assert.Same(t, &checked, ev.Checked)
	assert.Equal(t, int64(1714566615123), ev.At.UnixMilli())
}

func TestPageEventToRawErrors(t *testing.T) {
	_, err := pageEvent{Kind: "scroll", HTML: "<p data-uir-target=1></p>"}.toRaw()
	assert.Error(t, err)

	_, err = pageEvent{Kind: "click", HTML: "<p></p>"}.toRaw()
	assert.True(t, errors.Is(err, dom.ErrNoTarget))
}

func TestHighlightScript(t *testing.T) {
	js := highlightScript(`//button[normalize-space()='Say "hi"']`)
	assert.Contains(t, js, `("//button[normalize-space()='Say \"hi\"']")`)
	assert.Contains(t, js, "}, 3000);")
	assert.Equal(t, 2, strings.Count(js, highlightID))
}

func newTestManager(start func(*ChromeRecorder) error) *RecorderManager {
	logger, _ := test.NewNullLogger()
	rm := NewManager(Config{Capture: capture.DefaultConfig()}, logger)
	rm.start = start
	return rm
}

func fakeStart(rec *ChromeRecorder) error {
	rec.mutex.Lock()
	rec.isRecording = true
	rec.mutex.Unlock()
	return nil
}

func TestManagerStartRecording(t *testing.T) {
	rm := newTestManager(fakeStart)

	rec, err := rm.StartRecording("s1", "https://example.test", "", nil)
	require.NoError(t, err)
	got, ok := rm.GetRecorder("s1")
	require.True(t, ok)
	assert.Same(t, rec, got)

	_, err = rm.StartRecording("s1", "https://example.test", "", nil)
	assert.Error(t, err)
}

func TestManagerStartFailureIsNotKept(t *testing.T) {
	rm := newTestManager(func(*ChromeRecorder) error { return ErrChromeNotFound })

	_, err := rm.StartRecording("s1", "https://example.test", "", nil)
	assert.ErrorIs(t, err, ErrChromeNotFound)
	_, ok := rm.GetRecorder("s1")
	assert.False(t, ok)
}

func TestManagerSetLanguage(t *testing.T) {
	rm := newTestManager(fakeStart)
	assert.Equal(t, "tr", rm.Language())

	rec, err := rm.StartRecording("s1", "https://example.test", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "tr", rec.State().Language)

	rm.SetLanguage("en-GB")
	assert.Equal(t, "en", rm.Language())
	assert.Equal(t, "en", rec.State().Language)

	later, err := rm.StartRecording("s2", "https://example.test", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "en", later.State().Language)
}

func TestManagerForgetsEndedRecorders(t *testing.T) {
	rm := newTestManager(func(rec *ChromeRecorder) error {
		close(rec.done)
		return nil
	})

	rec, err := rm.StartRecording("s1", "https://example.test", "", nil)
	require.NoError(t, err)
	assert.False(t, rec.Alive())
	require.Eventually(t, func() bool {
		_, ok := rm.GetRecorder("s1")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestStopWithoutStart(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rec := NewChromeRecorder("s1", Options{}, nil, logger)
	assert.ErrorIs(t, rec.Stop(), ErrNotRecording)
	assert.False(t, rec.Alive())

	_, err := rec.Highlight(context.Background(), "//a")
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestManagerLaunchAppliesSessionLanguage(t *testing.T) {
	rm := newTestManager(fakeStart)
	rec, err := rm.Launch(&models.Session{ID: "s1", URL: "https://example.test", Language: "en"}, nil)
	require.NoError(t, err)
	assert.True(t, rec.Alive())
	cr, ok := rm.GetRecorder("s1")
	require.True(t, ok)
	assert.Equal(t, "en", cr.State().Language)
}

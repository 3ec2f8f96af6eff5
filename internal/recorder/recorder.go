// Package recorder drives a Chrome page with chromedp and feeds the events
// a user performs in it to a capture driver.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"uirecorder/internal/capture"
	"uirecorder/pkg/chrome"
)

var (
	ErrChromeNotFound   = errors.New("chrome browser not found, install Google Chrome or Chromium")
	ErrAlreadyRecording = errors.New("recording is already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	startupTimeout      = 60 * time.Second
	evalTimeout         = 5 * time.Second
)

type Options struct {
	URL          string
	Device       string
	ChromePath   string
	Headless     bool
	PollInterval time.Duration
	Capture      capture.Config
}

type ChromeRecorder struct {
	sessionID string
	opts      Options
	log       logrus.FieldLogger
	driver    *capture.Driver

	mutex       sync.Mutex
	isRecording bool
	ctx         context.Context
	cancel      context.CancelFunc
	stopLoop    context.CancelFunc
	done        chan struct{}
}

func NewChromeRecorder(sessionID string, opts Options, sink capture.Sink, log logrus.FieldLogger) *ChromeRecorder {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	log = log.WithField("session", sessionID)
	return &ChromeRecorder{
		sessionID: sessionID,
		opts:      opts,
		log:       log,
		driver:    capture.NewDriver(sink, opts.Capture, capture.WithLogger(log)),
		done:      make(chan struct{}),
	}
}

// Start launches the browser, installs the capture script and begins
// recording.
func (r *ChromeRecorder) Start() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.isRecording {
		return ErrAlreadyRecording
	}

	chromePath := chrome.FindExecutable(r.opts.ChromePath)
	if chromePath == "" {
		return ErrChromeNotFound
	}
	dev, ok := chrome.LookupDevice(r.opts.Device)
	if !ok {
		return fmt.Errorf("unknown device %q", r.opts.Device)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.Flag("headless", r.opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-sync", true),
		chromedp.UserAgent(dev.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(r.log.Debugf),
		chromedp.WithErrorf(r.log.Errorf),
	)
	r.ctx = browserCtx
	r.cancel = func() {
		closeCtx, cancel := context.WithTimeout(browserCtx, evalTimeout)
		if err := chromedp.Cancel(closeCtx); err != nil && !errors.Is(err, context.Canceled) {
			r.log.WithError(err).Debug("graceful browser close failed")
		}
		cancel()
		browserCancel()
		allocCancel()
	}

	// The first Run allocates the browser and must use the browser context
	// itself, so the startup deadline is enforced with a timer.
	timer := time.AfterFunc(startupTimeout, browserCancel)
	err := chromedp.Run(browserCtx,
		chromedp.Emulate(dev),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(captureScript).Do(ctx)
			return err
		}),
		chromedp.Navigate(r.opts.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(captureScript, nil),
	)
	timer.Stop()
	if err != nil {
		r.cancel()
		return fmt.Errorf("failed to start recording: %w", err)
	}

	loopCtx, stopLoop := context.WithCancel(browserCtx)
	r.stopLoop = stopLoop
	r.isRecording = true
	r.driver.SetRecording(true, true)
	r.log.WithFields(logrus.Fields{"url": r.opts.URL, "device": dev.Name}).Info("recording started")

	go r.listenForEvents(loopCtx)
	return nil
}

// Stop drains the page one last time, flushes a pending input and closes
// the browser.
func (r *ChromeRecorder) Stop() error {
	r.mutex.Lock()
	if !r.isRecording {
		r.mutex.Unlock()
		return ErrNotRecording
	}
	r.isRecording = false
	r.mutex.Unlock()

	r.stopLoop()
	<-r.done

	if r.ctx.Err() == nil {
		r.drain(r.ctx)
	}
	r.driver.SetRecording(false, false)
	r.driver.Close()
	r.cancel()

	r.log.Info("recording stopped")
	return nil
}

func (r *ChromeRecorder) IsRecording() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.isRecording
}

// Alive reports whether the page is still being polled. It turns false when
// the user closes the browser.
func (r *ChromeRecorder) Alive() bool {
	select {
	case <-r.done:
		return false
	default:
		return r.IsRecording()
	}
}

// Done is closed when polling ends.
func (r *ChromeRecorder) Done() <-chan struct{} {
	return r.done
}

func (r *ChromeRecorder) SetLanguage(code string) {
	r.driver.SetLanguage(code)
}

func (r *ChromeRecorder) State() capture.State {
	return r.driver.State()
}

// Highlight outlines the element locator resolves to in the live page and
// reports whether one was found.
func (r *ChromeRecorder) Highlight(ctx context.Context, locator string) (bool, error) {
	if !r.Alive() {
		return false, ErrNotRecording
	}
	evalCtx, cancel := context.WithTimeout(r.ctx, evalTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var found bool
	if err := chromedp.Run(evalCtx, chromedp.Evaluate(highlightScript(locator), &found)); err != nil {
		return false, fmt.Errorf("highlight: %w", err)
	}
	return found, nil
}

func (r *ChromeRecorder) listenForEvents(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.drain(ctx) && r.ctx.Err() != nil {
				r.log.Warn("browser closed, recording ended")
				return
			}
		}
	}
}

// drain fetches queued page events and hands them to the driver in order.
func (r *ChromeRecorder) drain(ctx context.Context) bool {
	var events []pageEvent
	if err := chromedp.Run(ctx, chromedp.Evaluate(drainExpression, &events)); err != nil {
		if ctx.Err() == nil {
			r.log.WithError(err).Debug("error getting events")
		}
		return false
	}
	for _, e := range events {
		ev, err := e.toRaw()
		if err != nil {
			r.log.WithError(err).Warn("dropping page event")
			continue
		}
		r.driver.Handle(ev)
	}
	return true
}

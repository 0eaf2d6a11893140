// Package snapshot captures PNG thumbnails of staged previews with a
// headless browser. It is optional and never sits on the save path.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/avallon-labs/avallon/internal/interfaces"
)

// Capturer renders a URL headlessly and screenshots it.
type Capturer struct {
	outputDir string
	timeout   time.Duration
	logger    interfaces.Logger
}

// NewCapturer writes thumbnails under outputDir.
func NewCapturer(outputDir string, timeout time.Duration, logger interfaces.Logger) (*Capturer, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &Capturer{outputDir: outputDir, timeout: timeout, logger: logger}, nil
}

// waitNetworkIdle signals once no requests have been in flight for
// idleAfter. Pages that keep polling would otherwise stall the capture
// forever, so the caller still bounds the wait with a deadline.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() { close(idleChan) })
			}
		})
	}
	startTimer()

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) == 0 {
				startTimer()
			}
		}
	})

	return idleChan
}

// Capture renders url and writes a PNG named after siteID, returning the
// file path.
func (c *Capturer) Capture(ctx context.Context, siteID, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx, cancelChrome := chromedp.NewContext(ctx)
	defer cancelChrome()

	start := time.Now()
	if err := chromedp.Run(ctx,
		chromedp.EmulateViewport(1280, 800),
		chromedp.Navigate(url),
	); err != nil {
		return "", fmt.Errorf("navigating to preview: %w", err)
	}

	select {
	case <-waitNetworkIdle(ctx, 2*time.Second):
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for network idle: %w", ctx.Err())
	}

	var png []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&png, 80)); err != nil {
		return "", fmt.Errorf("taking screenshot: %w", err)
	}

	path := filepath.Join(c.outputDir, siteID+".png")
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("writing screenshot: %w", err)
	}

	c.logger.Info("thumbnail captured",
		interfaces.Field{Key: "site_id", Value: siteID},
		interfaces.Field{Key: "path", Value: path},
		interfaces.Field{Key: "elapsed", Value: time.Since(start).String()})
	return path, nil
}

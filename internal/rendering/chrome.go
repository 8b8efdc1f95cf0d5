package rendering

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chromedp/chromedp"

	"eventpulse/internal/config"
	apperrors "eventpulse/internal/errors"
)

// newChromeSession starts a headless browser tab and probes it with a
// blank navigation. The probe is what surfaces a missing Chrome binary,
// allocation itself never fails. Callers must invoke cancel when done.
func newChromeSession(ctx context.Context) (context.Context, context.CancelFunc, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts, chromedp.Flag("headless", true))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelTab()
		cancelAlloc()
	}

	probeCtx, cancelProbe := context.WithTimeout(tabCtx, config.ChartRenderTimeout)
	defer cancelProbe()
	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrChromeUnavailable, err)
	}
	return tabCtx, cancel, nil
}

// screenshotChart loads one chart page in the session tab and writes the
// viewport capture as a PNG. Each chart gets its own render timeout.
func screenshotChart(ctx context.Context, htmlPath, pngPath string) error {
	renderCtx, cancel := context.WithTimeout(ctx, config.ChartRenderTimeout)
	defer cancel()

	var buf []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(chartWidth, chartHeight),
		chromedp.Navigate(fileURL(htmlPath)),
		chromedp.WaitVisible("#chart", chromedp.ByID),
		chromedp.FullScreenshot(&buf, 100),
	}
	if err := chromedp.Run(renderCtx, tasks); err != nil {
		return fmt.Errorf("failed to capture %s: %w", filepath.Base(pngPath), err)
	}

	if err := os.WriteFile(pngPath, buf, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(pngPath), err)
	}
	return nil
}

func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

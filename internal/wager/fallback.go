package wager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// UIDriver is the automation collaborator used when a session has no
// programmatic endpoint or token. One driver is bound to one session's
// browser context; process bootstrap (profiles, proxies, geolocation)
// happens outside this package.
type UIDriver interface {
	// Submit clicks the selection, enters the stake and submits,
	// returning the visible page text after the submission settles.
	Submit(ctx context.Context, identifier, selectionText string, stakeMinor int64) (string, error)
	// Reload forces a page refresh so the provider re-commits prices.
	Reload(ctx context.Context) error
	// LocateSelection re-finds a selection after reload, by identifier
	// first and display text second, and returns its current price.
	LocateSelection(ctx context.Context, identifier, selectionText string) (int, bool, error)
}

// settleDelay lets client-side state propagate after UI actions.
const settleDelay = 2 * time.Second

// ChromeDriver drives a headless Chrome tab via chromedp.
type ChromeDriver struct {
	// tabCtx is a live chromedp context for this session's profile.
	tabCtx context.Context
}

// NewChromeDriver wraps an existing chromedp tab context.
func NewChromeDriver(tabCtx context.Context) *ChromeDriver {
	return &ChromeDriver{tabCtx: tabCtx}
}

// run derives a bounded chromedp context that also honors the
// caller's cancellation.
func (d *ChromeDriver) run(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(d.tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// Submit performs the UI submission path and returns the page text.
func (d *ChromeDriver) Submit(ctx context.Context, identifier, selectionText string, stakeMinor int64) (string, error) {
	runCtx, cancel := d.run(ctx, 45*time.Second)
	defer cancel()

	stake := fmt.Sprintf("%.2f", float64(stakeMinor)/100)
	var pageText string
	err := chromedp.Run(runCtx,
		chromedp.Click(fmt.Sprintf(`[data-proposal="%s"]`, identifier), chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.SetValue(`input[name="stake"]`, stake, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.Text("body", &pageText, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("ui submit %s: %w", identifier, err)
	}
	return pageText, nil
}

// Reload refreshes the page and waits for client state to settle.
func (d *ChromeDriver) Reload(ctx context.Context) error {
	runCtx, cancel := d.run(ctx, 30*time.Second)
	defer cancel()
	if err := chromedp.Run(runCtx,
		chromedp.Reload(),
		chromedp.Sleep(settleDelay),
	); err != nil {
		return fmt.Errorf("ui reload: %w", err)
	}
	return nil
}

// LocateSelection re-finds a selection after a reload and reads its
// displayed price.
func (d *ChromeDriver) LocateSelection(ctx context.Context, identifier, selectionText string) (int, bool, error) {
	runCtx, cancel := d.run(ctx, 20*time.Second)
	defer cancel()

	var priceText string
	err := chromedp.Run(runCtx,
		chromedp.Text(fmt.Sprintf(`[data-proposal="%s"] .price`, identifier), &priceText, chromedp.ByQuery),
	)
	if err == nil && priceText != "" {
		price, perr := parseDisplayedPrice(priceText)
		if perr == nil {
			return price, true, nil
		}
	}

	// Identifier lookup failed; fall back to display text.
	if selectionText == "" {
		return 0, false, nil
	}
	var found bool
	var viaText string
	err = chromedp.Run(runCtx,
		chromedp.Evaluate(fmt.Sprintf(
			`(() => {
				const el = Array.from(document.querySelectorAll('[data-proposal]'))
					.find(e => e.textContent.includes(%q));
				return el ? el.querySelector('.price').textContent : "";
			})()`, selectionText), &viaText),
	)
	if err != nil {
		return 0, false, fmt.Errorf("ui locate %s: %w", identifier, err)
	}
	if viaText == "" {
		return 0, false, nil
	}
	price, perr := parseDisplayedPrice(viaText)
	if perr != nil {
		return 0, false, nil
	}
	found = true
	return price, found, nil
}

func parseDisplayedPrice(text string) (int, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "+")
	var price int
	if _, err := fmt.Sscanf(text, "%d", &price); err != nil {
		return 0, fmt.Errorf("parse price %q: %w", text, err)
	}
	return price, nil
}

// ClassifyPageText maps visible page text after a UI submission onto
// the outcome taxonomy.
func ClassifyPageText(text string) OutcomeCode {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "wager placed", "bet placed", "pick submitted", "success"):
		return OutcomeAccepted
	case containsAny(lower, "price has changed", "odds have changed", "line has moved"):
		return OutcomePriceChanged
	case containsAny(lower, "insufficient", "not enough funds"):
		return OutcomeInsufficientFunds
	default:
		return OutcomeFailed
	}
}

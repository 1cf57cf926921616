package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// filledAttr marks the input FillInput picked so later steps can find it.
	filledAttr = "data-tagihan-input"
)

var execCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

type Options struct {
	// ExecPath overrides browser discovery.
	ExecPath  string
	Headless  bool
	UserAgent string
}

// Chrome launches one Chrome/Chromium process per session through the
// DevTools protocol.
type Chrome struct {
	opts Options
}

func NewChrome(opts Options) *Chrome {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Chrome{opts: opts}
}

func (c *Chrome) Available() bool {
	if c.opts.ExecPath != "" {
		_, err := os.Stat(c.opts.ExecPath)
		return err == nil
	}
	for _, name := range execCandidates {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func (c *Chrome) NewSession(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.NoSandbox,
		chromedp.UserAgent(c.opts.UserAgent),
		chromedp.WindowSize(1280, 720),
	)
	if c.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	s := &chromeSession{
		ctx:     tabCtx,
		pending: make(map[network.RequestID]*watch),
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
	}
	chromedp.ListenTarget(tabCtx, s.onEvent)

	// The first Run starts the browser.
	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		s.cancel()
		return nil, eris.Wrap(err, "browser: start")
	}
	return s, nil
}

type watch struct {
	part string
	ch   chan []byte
}

type chromeSession struct {
	ctx    context.Context
	cancel func()

	mu      sync.Mutex
	watches []*watch
	pending map[network.RequestID]*watch
	closed  bool
}

func (s *chromeSession) Watch(urlPart string) <-chan []byte {
	w := &watch{part: urlPart, ch: make(chan []byte, 4)}
	s.mu.Lock()
	s.watches = append(s.watches, w)
	s.mu.Unlock()
	return w.ch
}

func (s *chromeSession) onEvent(ev any) {
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, w := range s.watches {
			if strings.Contains(e.Response.URL, w.part) {
				s.pending[e.RequestID] = w
				return
			}
		}
	case *network.EventLoadingFinished:
		s.mu.Lock()
		w, ok := s.pending[e.RequestID]
		delete(s.pending, e.RequestID)
		s.mu.Unlock()
		if ok {
			// Listeners must not block the event loop.
			go s.fetchBody(e.RequestID, w)
		}
	}
}

func (s *chromeSession) fetchBody(id network.RequestID, w *watch) {
	var body []byte
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		b, err := network.GetResponseBody(id).Do(ctx)
		body = b
		return err
	}))
	if err != nil {
		zap.L().Debug("browser: response body unavailable", zap.String("match", w.part), zap.Error(err))
		return
	}
	select {
	case w.ch <- body:
	default:
	}
}

// run executes actions on the tab, bounded by ctx as well as the session.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return eris.Wrapf(s.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)), "browser: navigate %s", url)
}

const findInputJS = `(function(keywords, attr) {
	const visible = el => !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
	const inputs = Array.from(document.querySelectorAll('input')).filter(el => {
		const t = (el.getAttribute('type') || 'text').toLowerCase();
		return ['text', 'tel', 'number', 'search'].includes(t) && visible(el);
	});
	const describe = el => [el.placeholder, el.getAttribute('aria-label'), el.name, el.id]
		.filter(Boolean).join(' ').toLowerCase();
	let target = inputs.find(el => keywords.some(k => describe(el).includes(k)));
	if (!target) target = inputs[0];
	if (!target) return false;
	document.querySelectorAll('[' + attr + ']').forEach(el => el.removeAttribute(attr));
	target.setAttribute(attr, '1');
	return true;
})(%s, %q)`

const clickButtonJS = `(function(keywords) {
	const visible = el => !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
	const candidates = Array.from(document.querySelectorAll('button, [role="button"], input[type="submit"], a'));
	const btn = candidates.find(el => {
		const text = (el.innerText || el.value || '').toLowerCase();
		return visible(el) && keywords.some(k => text.includes(k));
	});
	if (!btn) return false;
	btn.click();
	return true;
})(%s)`

func lowerJSON(keywords []string) string {
	lower := make([]string, len(keywords))
	for i, k := range keywords {
		lower[i] = strings.ToLower(k)
	}
	b, _ := json.Marshal(lower)
	return string(b)
}

func (s *chromeSession) FillInput(ctx context.Context, keywords []string, value string) error {
	var found bool
	if err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(findInputJS, lowerJSON(keywords), filledAttr), &found)); err != nil {
		return eris.Wrap(err, "browser: find input")
	}
	if !found {
		return ErrNotFound
	}
	sel := fmt.Sprintf(`[%s="1"]`, filledAttr)
	return eris.Wrap(s.run(ctx,
		chromedp.Clear(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	), "browser: fill input")
}

func (s *chromeSession) ClickButton(ctx context.Context, keywords []string) (bool, error) {
	var clicked bool
	if err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(clickButtonJS, lowerJSON(keywords)), &clicked)); err != nil {
		return false, eris.Wrap(err, "browser: click button")
	}
	return clicked, nil
}

func (s *chromeSession) PressEnter(ctx context.Context) error {
	sel := fmt.Sprintf(`[%s="1"]`, filledAttr)
	return eris.Wrap(s.run(ctx, chromedp.SendKeys(sel, kb.Enter, chromedp.ByQuery)), "browser: press enter")
}

func (s *chromeSession) Content(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", eris.Wrap(err, "browser: read content")
	}
	return html, nil
}

func (s *chromeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	return nil
}

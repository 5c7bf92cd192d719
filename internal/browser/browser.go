package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"serpscout/internal/dom"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config controls how sessions are launched.
type Config struct {
	Headless        bool          `yaml:"headless"`
	ProxyURL        string        `yaml:"proxy"`
	Bin             string        `yaml:"bin"`
	ScratchRoot     string        `yaml:"scratch_root"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout"`
	ImplicitWait    time.Duration `yaml:"implicit_wait"`
}

// DefaultConfig returns headful sessions: the results page often withholds
// the summary panel from headless Chrome.
func DefaultConfig() Config {
	return Config{
		Headless:        false,
		PageLoadTimeout: 30 * time.Second,
		ImplicitWait:    5 * time.Second,
	}
}

// Session is one browser process bound to a device profile, with a private
// user-data directory. It serves one attempt at a time.
type Session struct {
	id      string
	cfg     Config
	profile Profile
	dir     string

	launcher *launcher.Launcher
	launched bool
	browser  *rod.Browser
	page     *rod.Page
	log      zerolog.Logger

	releaseOnce sync.Once
	releaseErr  error
}

// Acquire launches a browser configured for profile. On any failure every
// resource allocated so far is torn down before returning.
func Acquire(ctx context.Context, cfg Config, profile Profile) (_ *Session, err error) {
	bin, err := FindBinary(cfg.Bin)
	if err != nil {
		return nil, err
	}

	id, dir, err := scratchDir(cfg.ScratchRoot)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:      id,
		cfg:     cfg,
		profile: profile,
		dir:     dir,
		log: zerolog.Ctx(ctx).With().
			Str("component", "browser").
			Str("session", id[:8]).
			Str("profile", string(profile)).
			Logger(),
	}
	defer func() {
		if err != nil {
			_ = s.Release()
		}
	}()

	vp := profile.viewport()
	l := launcher.New().
		Context(ctx).
		Bin(bin).
		Headless(cfg.Headless).
		UserDataDir(dir).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-infobars").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-notifications").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("window-size", fmt.Sprintf("%d,%d", vp.Width, vp.Height))
	if inContainer() {
		l = l.NoSandbox(true).
			Set("disable-dev-shm-usage").
			Set("disable-setuid-sandbox").
			Set("disable-gpu").
			Set("disable-software-rasterizer").
			Set("mute-audio")
	}
	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}
	s.launcher = l

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	s.launched = true

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	s.browser = b

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	s.page = page

	if err := s.applyProfile(); err != nil {
		return nil, err
	}

	s.log.Debug().Str("bin", bin).Bool("headless", cfg.Headless).Msg("session acquired")
	return s, nil
}

// scratchDir creates a fresh session-<uuid> directory under root, or under
// the OS temp dir when root is empty.
func scratchDir(root string) (id, dir string, err error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create scratch root: %w", err)
	}
	id = uuid.NewString()
	dir = filepath.Join(root, "session-"+id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	return id, dir, nil
}

func (s *Session) applyProfile() error {
	if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.profile.UserAgent(),
		AcceptLanguage: "en-US,en;q=0.9",
		Platform:       s.profile.platform(),
	}); err != nil {
		return fmt.Errorf("failed to set user agent: %w", err)
	}
	if err := s.page.SetViewport(s.profile.viewport()); err != nil {
		return fmt.Errorf("failed to set viewport: %w", err)
	}
	if s.profile == ProfileMobile {
		_ = proto.EmulationSetTouchEmulationEnabled{Enabled: true}.Call(s.page)
	}
	if _, err := s.page.EvalOnNewDocument(stealthScript); err != nil {
		return fmt.Errorf("failed to install stealth script: %w", err)
	}
	return nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Profile returns the device profile the session presents.
func (s *Session) Profile() Profile { return s.profile }

// Dir returns the session's private user-data directory.
func (s *Session) Dir() string { return s.dir }

// Page exposes the underlying rod page for callers that need more than the
// session helpers.
func (s *Session) Page() *rod.Page { return s.page }

// bounded returns p limited to d and the func that releases the deadline.
func bounded(p *rod.Page, d time.Duration) (*rod.Page, func()) {
	if d <= 0 {
		return p, func() {}
	}
	p = p.Timeout(d)
	return p, func() { p.CancelTimeout() }
}

// Navigate loads url and waits for the load event, bounded by the page load
// timeout. Timeouts are reported as ErrPageLoadTimeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	p, done := bounded(s.page.Context(ctx), s.cfg.PageLoadTimeout)
	defer done()
	if err := p.Navigate(url); err != nil {
		return loadError(url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return loadError(url, err)
	}
	return nil
}

// Root returns the live document element. Element queries made through it
// are bounded by the implicit wait.
func (s *Session) Root() (dom.Node, error) {
	p, done := bounded(s.page, s.cfg.ImplicitWait)
	defer done()
	el, err := p.Element("html")
	if err != nil {
		return nil, fmt.Errorf("failed to find document element: %w", err)
	}
	return dom.FromRod(el.Context(s.page.GetContext()), s.cfg.ImplicitWait), nil
}

// HTML returns the current page source.
func (s *Session) HTML() (string, error) {
	p, done := bounded(s.page, 10*time.Second)
	defer done()
	return p.HTML()
}

// Title returns the current document title.
func (s *Session) Title() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.Title
}

// URL returns the current page URL.
func (s *Session) URL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// ScrollToTop scrolls the window back to the origin.
func (s *Session) ScrollToTop() error {
	p, done := bounded(s.page, 5*time.Second)
	defer done()
	_, err := p.Eval(`() => window.scrollTo(0, 0)`)
	return err
}

// Screenshot writes a PNG of the viewport to path.
func (s *Session) Screenshot(path string) error {
	p, done := bounded(s.page, 15*time.Second)
	data, err := p.Screenshot(false, nil)
	done()
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create screenshot dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Release closes the page and browser, kills the process and removes the
// scratch directory. It is safe to call more than once.
func (s *Session) Release() error {
	s.releaseOnce.Do(func() {
		var errs []error
		if s.page != nil {
			_ = s.page.Close()
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
			}
		}
		if s.launched {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
		if s.dir != "" {
			if err := os.RemoveAll(s.dir); err != nil {
				errs = append(errs, fmt.Errorf("failed to remove scratch dir: %w", err))
			}
		}
		s.releaseErr = errors.Join(errs...)
		s.log.Debug().Msg("session released")
	})
	return s.releaseErr
}

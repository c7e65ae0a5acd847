// Package scrape provides browser-based content scraping with go-rod.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/raphaelgruber/contentd/internal/config"
	"github.com/raphaelgruber/contentd/internal/engine"
	"github.com/raphaelgruber/contentd/internal/models"
)

// loginSettleDelay waits for post-submit navigation before checking whether
// login succeeded.
const loginSettleDelay = 2 * time.Second

// Scraper fetches content items from web pages using a headless browser.
// Each Scrape call launches its own browser instance; scraping failures are
// reported as errors and absorbed upstream into empty item lists.
type Scraper struct {
	headless  bool
	timeout   time.Duration
	userAgent string
	profiles  []config.SelectorProfile
	logger    *slog.Logger
}

// Compile-time check that Scraper implements the capability.
var _ engine.Scraper = (*Scraper)(nil)

// NewScraper creates a scraper from configuration. Selector profiles are
// loaded from the configured file; a missing file just disables
// profile-based extraction.
func NewScraper(cfg config.Config, logger *slog.Logger) (*Scraper, error) {
	if logger == nil {
		logger = slog.Default()
	}

	profiles, err := config.LoadSelectorProfiles(cfg.SelectorProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("load selector profiles: %w", err)
	}

	return &Scraper{
		headless:  cfg.Headless,
		timeout:   cfg.ScrapeTimeout,
		userAgent: cfg.UserAgent,
		profiles:  profiles,
		logger:    logger,
	}, nil
}

// Scrape loads the target URL and extracts content items. When credentials
// are given, the site's login form is filled and submitted first. Extraction
// uses a matching selector profile when one exists for the host, otherwise
// the default strategy.
func (s *Scraper) Scrape(ctx context.Context, target string, creds *models.AuthCredentials) ([]models.ContentItem, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	controlURL, err := launcher.New().Headless(s.headless).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			s.logger.Warn("failed to close browser", "error", err)
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	page = page.Context(ctx)

	if s.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.userAgent}); err != nil {
			s.logger.Warn("failed to set user agent", "error", err)
		}
	}

	if creds != nil {
		if err := s.login(page, parsed, creds); err != nil {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
	}

	if err := page.Timeout(s.timeout).Navigate(target); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", target, err)
	}
	if err := page.Timeout(s.timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load %s: %w", target, err)
	}

	if profile := s.profileFor(parsed.Host); profile != nil {
		return s.extractWithProfile(page, parsed, *profile)
	}
	return s.extractDefault(page, parsed)
}

// login navigates to the site's login page, fills the first text/password
// inputs, submits, and verifies navigation left the login page.
func (s *Scraper) login(page *rod.Page, target *url.URL, creds *models.AuthCredentials) error {
	loginURL := fmt.Sprintf("%s://%s/login", target.Scheme, target.Host)
	s.logger.Info("authenticating", "login_url", loginURL, "username", creds.Username)

	if err := page.Timeout(s.timeout).Navigate(loginURL); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}
	if err := page.Timeout(s.timeout).WaitLoad(); err != nil {
		return fmt.Errorf("wait login page: %w", err)
	}

	username, err := page.Timeout(s.timeout).Element(`input[type="text"], input[type="email"]`)
	if err != nil {
		return fmt.Errorf("find username field: %w", err)
	}
	password, err := page.Timeout(s.timeout).Element(`input[type="password"]`)
	if err != nil {
		return fmt.Errorf("find password field: %w", err)
	}
	submit, err := page.Timeout(s.timeout).Element(`button[type="submit"], input[type="submit"]`)
	if err != nil {
		return fmt.Errorf("find submit button: %w", err)
	}

	if err := username.Input(creds.Username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := password.Input(creds.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}

	time.Sleep(loginSettleDelay)

	info, err := page.Info()
	if err != nil {
		return fmt.Errorf("check login result: %w", err)
	}
	if strings.Contains(info.URL, "/login") {
		return fmt.Errorf("login failed: still on login page")
	}
	return nil
}

// profileFor returns the selector profile matching host, or nil.
func (s *Scraper) profileFor(host string) *config.SelectorProfile {
	for i := range s.profiles {
		if strings.EqualFold(s.profiles[i].Host, host) {
			return &s.profiles[i]
		}
	}
	return nil
}

// extractWithProfile extracts one item per container element using the
// profile's field selectors. Fields named *_url or *_image resolve href/src
// attributes against the page URL.
func (s *Scraper) extractWithProfile(page *rod.Page, base *url.URL, profile config.SelectorProfile) ([]models.ContentItem, error) {
	container := profile.Container
	if container == "" {
		container = "article"
	}

	containers, err := page.Timeout(s.timeout).Elements(container)
	if err != nil {
		return nil, fmt.Errorf("find containers %q: %w", container, err)
	}

	items := make([]models.ContentItem, 0, len(containers))
	for _, el := range containers {
		item := models.NewContentItem()

		for field, selector := range profile.Fields {
			target, err := el.Element(selector)
			if err != nil {
				continue
			}

			switch {
			case strings.HasSuffix(field, "_url"):
				if href := s.attribute(target, "href", base); href != "" {
					item.Set(field, models.StringValue(href))
				}
			case strings.HasSuffix(field, "_image"):
				if src := s.attribute(target, "src", base); src != "" {
					item.Set(field, models.StringValue(src))
				}
			default:
				text, err := target.Text()
				if err != nil {
					continue
				}
				item.Set(field, models.StringValue(strings.TrimSpace(text)))
			}
		}

		if item.Len() > 0 {
			items = append(items, *item)
		}
	}

	s.logger.Info("extracted items with profile", "host", profile.Host, "items", len(items))
	return items, nil
}

// extractDefault extracts one item per main content section: its text, its
// links, and its images.
func (s *Scraper) extractDefault(page *rod.Page, base *url.URL) ([]models.ContentItem, error) {
	sections, err := page.Timeout(s.timeout).Elements("main, article, .content")
	if err != nil || len(sections) == 0 {
		sections, err = page.Timeout(s.timeout).Elements("body")
		if err != nil {
			return nil, fmt.Errorf("find content sections: %w", err)
		}
	}

	items := make([]models.ContentItem, 0, len(sections))
	for _, section := range sections {
		item := models.NewContentItem()

		text, err := section.Text()
		if err == nil && strings.TrimSpace(text) != "" {
			item.Set("text", models.StringValue(strings.TrimSpace(text)))
		}

		if links, err := section.Elements("a"); err == nil {
			var urls []string
			for _, link := range links {
				if href := s.attribute(link, "href", base); href != "" {
					urls = append(urls, href)
				}
			}
			if len(urls) > 0 {
				item.Set("urls", models.ListValue(urls))
			}
		}

		if imgs, err := section.Elements("img"); err == nil {
			var srcs []string
			for _, img := range imgs {
				if src := s.attribute(img, "src", base); src != "" {
					srcs = append(srcs, src)
				}
			}
			if len(srcs) > 0 {
				item.Set("images", models.ListValue(srcs))
			}
		}

		if item.Len() > 0 {
			items = append(items, *item)
		}
	}

	s.logger.Info("extracted items with default strategy", "items", len(items))
	return items, nil
}

// attribute reads an element attribute and resolves it against the base URL.
func (s *Scraper) attribute(el *rod.Element, name string, base *url.URL) string {
	attr, err := el.Attribute(name)
	if err != nil || attr == nil || *attr == "" {
		return ""
	}
	ref, err := url.Parse(*attr)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

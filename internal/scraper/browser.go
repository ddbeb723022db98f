package scraper

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Session is the browser capability surface the traversal logic depends
// on. The production implementation drives a headless Chromium via rod; a
// fake implementation stands in for it in tests.
type Session interface {
	// Navigate loads url and waits for it to settle.
	Navigate(url string) error
	// Text returns the rendered visible text of the current page.
	Text() (string, error)
	// HTML returns the current page source.
	HTML() (string, error)
	// Links returns absolute hrefs on the page containing substr.
	Links(substr string) ([]string, error)
	// FindControl locates a visible interactive control whose text
	// contains one of labels.
	FindControl(labels []string) (Control, error)
	// Close tears the session down, swallowing teardown errors.
	Close()
}

// Control is a clickable page element with a scripted-click fallback for
// intercepted or stale-element failures.
type Control interface {
	Click() error
	ScriptClick() error
}

// showMoreLabels are the pagination control captions the marketplace uses.
var showMoreLabels = []string{"Show More", "Load More", "More Results"}

type rodSession struct {
	browser *rod.Browser
	page    *rod.Page
	baseURL string
	settle  time.Duration
	timeout time.Duration
}

// NewRodSession launches a headless browser and returns a ready Session.
func NewRodSession(baseURL, chromeBin string, navigateTimeout, settle time.Duration) (Session, error) {
	l := launcher.New().
		Headless(true).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", "1920,1080").
		Set("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	if bin := findChromiumPath(chromeBin); bin != "" {
		l = l.Bin(bin)
	}
	if isDockerEnvironment() {
		l = l.Set("disable-setuid-sandbox").
			Set("no-first-run").
			Set("disable-default-apps").
			Set("single-process")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %v", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %v", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to open stealth page: %v", err)
	}

	return &rodSession{
		browser: browser,
		page:    page,
		baseURL: baseURL,
		settle:  settle,
		timeout: navigateTimeout,
	}, nil
}

func (s *rodSession) Navigate(url string) error {
	page := s.page.Timeout(s.timeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation to %s failed: %v", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %v", err)
	}
	// Give client-side rendering time to settle before reading content.
	time.Sleep(s.settle)
	_ = s.page.Timeout(s.timeout).WaitStable(time.Second)
	return nil
}

func (s *rodSession) Text() (string, error) {
	result, err := s.page.Timeout(s.timeout).Eval(`() => document.body.innerText`)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%v", result.Value), nil
}

func (s *rodSession) HTML() (string, error) {
	return s.page.Timeout(s.timeout).HTML()
}

func (s *rodSession) Links(substr string) ([]string, error) {
	elements, err := s.page.Timeout(s.timeout).Elements("a[href]")
	if err != nil {
		return nil, err
	}

	var links []string
	for _, element := range elements {
		href, err := element.Attribute("href")
		if err != nil || href == nil || *href == "" {
			continue
		}
		if !strings.Contains(*href, substr) || strings.Contains(*href, "#") {
			continue
		}
		links = append(links, AbsoluteURL(s.baseURL, *href))
	}
	return links, nil
}

func (s *rodSession) FindControl(labels []string) (Control, error) {
	var clauses []string
	for _, label := range labels {
		clauses = append(clauses,
			fmt.Sprintf("//button[contains(., '%s')]", label),
			fmt.Sprintf("//a[contains(., '%s')]", label))
	}
	xpath := strings.Join(clauses, " | ")

	element, err := s.page.Timeout(3 * time.Second).ElementX(xpath)
	if err != nil {
		return nil, fmt.Errorf("no pagination control found: %v", err)
	}

	if visible, err := element.Visible(); err != nil || !visible {
		return nil, fmt.Errorf("pagination control not interactable")
	}
	return &rodControl{element: element}, nil
}

func (s *rodSession) Close() {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
}

type rodControl struct {
	element *rod.Element
}

func (c *rodControl) Click() error {
	if err := c.element.ScrollIntoView(); err != nil {
		return err
	}
	return c.element.Click(proto.InputMouseButtonLeft, 1)
}

// ScriptClick clicks via the DOM, bypassing overlays that intercept
// synthesized mouse events.
func (c *rodControl) ScriptClick() error {
	_, err := c.element.Eval(`() => this.click()`)
	return err
}

// findChromiumPath looks for a Chromium/Chrome binary in common locations.
func findChromiumPath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
		"/opt/google/chrome/chrome",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// isDockerEnvironment checks if running inside a container.
func isDockerEnvironment() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if data, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		return strings.Contains(string(data), "docker") || strings.Contains(string(data), "containerd")
	}
	return false
}

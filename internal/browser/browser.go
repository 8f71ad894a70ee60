package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Open launches the system browser on a repository or profile page. Only
// https URLs pointing at github.com are accepted; everything the dashboard
// opens comes from parsed page links, and this is the last check between a
// scraped href and a shell.
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only https allowed)", u.Scheme)
	}
	if u.Host != "github.com" && u.Host != "www.github.com" {
		return fmt.Errorf("refusing to open non-GitHub host %q", u.Host)
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", rawURL).Start()
	case "linux":
		return exec.Command("xdg-open", rawURL).Start()
	case "windows":
		// Use rundll32 instead of cmd /c start to avoid shell interpretation
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start()
	default:
		return exec.Command("xdg-open", rawURL).Start()
	}
}

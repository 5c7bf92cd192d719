package browser

import (
	"os"

	"github.com/go-rod/rod/lib/launcher"
)

var knownBinaries = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
}

// FindBinary returns the browser executable to launch: explicit, then
// $CHROME_BIN, then well-known install paths, then rod's own lookup.
// It never downloads a browser.
func FindBinary(explicit string) (string, error) {
	candidates := append([]string{explicit, os.Getenv("CHROME_BIN")}, knownBinaries...)
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path, nil
		}
	}
	if path, ok := launcher.LookPath(); ok {
		return path, nil
	}
	return "", ErrEnvironmentUnavailable
}

// inContainer reports whether we run inside Docker or a Railway container,
// where Chrome needs the low-memory flag set.
func inContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	for _, key := range []string{"RAILWAY_ENVIRONMENT", "RAILWAY_SERVICE_NAME", "DOCKER_CONTAINER"} {
		if _, ok := os.LookupEnv(key); ok {
			return true
		}
	}
	return false
}

package browser

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEnvironmentUnavailable means no usable Chrome/Chromium binary was
	// found. Retrying does not help.
	ErrEnvironmentUnavailable = errors.New("no usable chrome or chromium binary found")

	// ErrPageLoadTimeout means a navigation did not finish within the page
	// load timeout.
	ErrPageLoadTimeout = errors.New("page load timed out")
)

// IsEnvironmentUnavailable reports whether err stems from a missing browser.
func IsEnvironmentUnavailable(err error) bool {
	return errors.Is(err, ErrEnvironmentUnavailable)
}

// IsPageLoadTimeout reports whether err is a bounded navigation timeout.
func IsPageLoadTimeout(err error) bool {
	return errors.Is(err, ErrPageLoadTimeout)
}

func loadError(url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrPageLoadTimeout, url, err)
	}
	return fmt.Errorf("failed to navigate to %s: %w", url, err)
}

package browser

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// Profile is the device identity presented to the target site.
type Profile string

const (
	ProfileDesktop Profile = "desktop"
	ProfileMobile  Profile = "mobile"
)

const (
	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	// Mobile requests often take a different anti-bot path than desktop ones.
	mobileUserAgent = "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Mobile Safari/537.36"
)

// ParseProfile accepts "desktop" or "mobile" (case-insensitive).
func ParseProfile(s string) (Profile, error) {
	switch Profile(strings.ToLower(strings.TrimSpace(s))) {
	case ProfileDesktop:
		return ProfileDesktop, nil
	case ProfileMobile:
		return ProfileMobile, nil
	default:
		return "", fmt.Errorf("unknown device profile: %q", s)
	}
}

// UserAgent returns the user-agent string sent under the profile.
func (p Profile) UserAgent() string {
	if p == ProfileMobile {
		return mobileUserAgent
	}
	return desktopUserAgent
}

// Alternate returns the other profile; escalation rotates through it.
func (p Profile) Alternate() Profile {
	if p == ProfileMobile {
		return ProfileDesktop
	}
	return ProfileMobile
}

func (p Profile) platform() string {
	if p == ProfileMobile {
		return "Linux armv8l"
	}
	return "Win32"
}

func (p Profile) viewport() *proto.EmulationSetDeviceMetricsOverride {
	if p == ProfileMobile {
		return &proto.EmulationSetDeviceMetricsOverride{
			Width:             412,
			Height:            915,
			DeviceScaleFactor: 2.625,
			Mobile:            true,
		}
	}
	return &proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}
}

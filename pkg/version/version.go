// Package version provides SDK and API version parsing, comparison, and
// the User-Agent sent with every uplink request.
package version

import (
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"strings"
)

// SDK is the version of this client library.
const SDK = "1.2.0"

// Current is the uplink API version this library speaks.
const Current = "1.0"

// APIVersion represents a parsed "major.minor" API version.
type APIVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (APIVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return APIVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return APIVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return APIVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return APIVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v APIVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v APIVersion) Compatible(other APIVersion) bool {
	return v.Major == other.Major
}

// APIPrefix returns the URL path prefix for a major version: "/api/vN".
func APIPrefix(major uint16) string {
	return fmt.Sprintf("/api/v%d", major)
}

// MajorFromURL extracts the API major version from an endpoint URL of
// the form https://host/api/vN/....
func MajorFromURL(endpoint string) (uint16, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return 0, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segs); i++ {
		if segs[i] != "api" || !strings.HasPrefix(segs[i+1], "v") {
			continue
		}
		major, err := strconv.ParseUint(segs[i+1][1:], 10, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid API version in %q: %w", endpoint, err)
		}
		return uint16(major), nil
	}
	return 0, fmt.Errorf("no API version in endpoint %q", endpoint)
}

// CheckEndpoint returns an error when the endpoint names an API major
// version this library does not speak. Endpoints without a version
// segment are accepted.
func CheckEndpoint(endpoint string) error {
	major, err := MajorFromURL(endpoint)
	if err != nil {
		return nil
	}
	current, _ := Parse(Current)
	if major != current.Major {
		return fmt.Errorf("endpoint API v%d not supported (library speaks v%d)", major, current.Major)
	}
	return nil
}

// UserAgent returns the User-Agent header value, e.g.
// "qrystal-uplink-go/1.2.0 (linux; arm64)".
func UserAgent() string {
	return fmt.Sprintf("qrystal-uplink-go/%s (%s; %s)", SDK, runtime.GOOS, runtime.GOARCH)
}

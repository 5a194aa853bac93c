package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    APIVersion
		wantErr bool
	}{
		{"1.0", APIVersion{1, 0}, false},
		{"2.13", APIVersion{2, 13}, false},
		{"1", APIVersion{}, true},
		{"1.0.0", APIVersion{}, true},
		{".1", APIVersion{}, true},
		{"1.", APIVersion{}, true},
		{"a.b", APIVersion{}, true},
		{"70000.0", APIVersion{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestCompatible(t *testing.T) {
	v1 := APIVersion{1, 0}
	if !v1.Compatible(APIVersion{1, 5}) {
		t.Error("1.0 should be compatible with 1.5")
	}
	if v1.Compatible(APIVersion{2, 0}) {
		t.Error("1.0 should not be compatible with 2.0")
	}
}

func TestMajorFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    uint16
		wantErr bool
	}{
		{"https://on.uplink.qrystal.partners/api/v1/heartbeat", 1, false},
		{"https://example.test/prefix/api/v3/telemetry", 3, false},
		{"https://example.test/heartbeat", 0, true},
		{"https://example.test/api/vX/heartbeat", 0, true},
		{"https://example.test/api", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := MajorFromURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.want {
				t.Errorf("MajorFromURL = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCheckEndpoint(t *testing.T) {
	if err := CheckEndpoint("https://on.uplink.qrystal.partners" + APIPrefix(1) + "/heartbeat"); err != nil {
		t.Errorf("v1 endpoint rejected: %v", err)
	}
	if err := CheckEndpoint("https://example.test/heartbeat"); err != nil {
		t.Errorf("unversioned endpoint rejected: %v", err)
	}
	if err := CheckEndpoint("https://example.test/api/v2/heartbeat"); err == nil {
		t.Error("v2 endpoint accepted")
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "qrystal-uplink-go/"+SDK) {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(ua, runtime.GOOS) {
		t.Errorf("UserAgent() = %q, missing GOOS", ua)
	}
}

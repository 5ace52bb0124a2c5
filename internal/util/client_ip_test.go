package util

import (
	"net/http/httptest"
	"testing"
)

func TestClientIPResolution(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"172.16.0.0/12", "192.0.2.50"})
	if err != nil {
		t.Fatalf("new trusted proxies: %v", err)
	}

	cases := []struct {
		name    string
		remote  string
		xff     string
		realIP  string
		trusted *TrustedProxies
		want    string
	}{
		{
			name:   "untrusted peer keeps its own address",
			remote: "203.0.113.40:55001",
			xff:    "198.51.100.9",
			realIP: "198.51.100.10",
			want:   "203.0.113.40",
		},
		{
			name:    "trusted peer honors forwarded chain",
			remote:  "172.16.4.4:443",
			xff:     "198.51.100.9",
			trusted: trusted,
			want:    "198.51.100.9",
		},
		{
			name:    "chain walked right to left past trusted hops",
			remote:  "172.16.4.4:443",
			xff:     "198.51.100.9, 172.16.0.2",
			trusted: trusted,
			want:    "198.51.100.9",
		},
		{
			name:    "garbage forwarded header falls back to x-real-ip",
			remote:  "172.16.4.4:443",
			xff:     "not-an-ip",
			realIP:  "198.51.100.33",
			trusted: trusted,
			want:    "198.51.100.33",
		},
		{
			name:    "fully trusted chain yields leftmost hop",
			remote:  "172.16.4.4:443",
			xff:     "172.16.9.9, 172.16.0.2",
			trusted: trusted,
			want:    "172.16.9.9",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://paperdesk.test/graphql", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			if got := ClientIP(req, tc.trusted); got != tc.want {
				t.Fatalf("client ip = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewTrustedProxiesValidation(t *testing.T) {
	tp, err := NewTrustedProxies([]string{"172.16.0.0/12", "2001:db8::1"})
	if err != nil || tp == nil {
		t.Fatalf("expected valid entries, got tp=%v err=%v", tp, err)
	}
	if tp, err := NewTrustedProxies(nil); err != nil || tp != nil {
		t.Fatalf("empty input should mean trust none, got tp=%v err=%v", tp, err)
	}
	if _, err := NewTrustedProxies([]string{"600.1.2.3"}); err == nil {
		t.Fatal("expected parse error for invalid entry")
	}
}

package storage

import "testing"

func TestFallbackEmail(t *testing.T) {
	tests := []struct {
		username, domain, want string
	}{
		{"2019awilliam", "tjhsst.edu", "2019awilliam@tjhsst.edu"},
		{"", "tjhsst.edu", ""},
		{"jteacher", "", ""},
	}
	for _, tt := range tests {
		if got := FallbackEmail(tt.username, tt.domain); got != tt.want {
			t.Errorf("FallbackEmail(%q, %q) = %q, want %q", tt.username, tt.domain, got, tt.want)
		}
	}
}

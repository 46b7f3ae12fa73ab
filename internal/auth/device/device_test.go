package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		contains  []string
		exact     string
	}{
		{name: "empty", userAgent: "  ", exact: "unknown device"},
		{
			name:      "chrome desktop",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			contains:  []string{"Chrome", " on ", "Windows"},
		},
		{
			name:      "safari iphone is mobile",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			contains:  []string{"Safari", "(mobile)"},
		},
		{
			name:      "firefox linux",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			contains:  []string{"Firefox", "Linux"},
		},
		{
			name:      "bot",
			userAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			exact:     "bot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Label(tt.userAgent)
			if tt.exact != "" {
				assert.Equal(t, tt.exact, got)
				return
			}
			for _, part := range tt.contains {
				assert.Contains(t, got, part)
			}
			assert.NotContains(t, got, "120.0")
		})
	}
}

package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peegflow/pkg/requestcontext"
)

func TestMiddlewareHandler(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", " "})
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		wantIP     string
	}{
		{name: "direct ipv4", remoteAddr: "203.0.113.7:5123", wantIP: "203.0.113.7"},
		{name: "direct ipv6", remoteAddr: "[2001:db8::1]:443", wantIP: "2001:db8::1"},
		{name: "xff ignored from untrusted peer", remoteAddr: "203.0.113.7:1", headers: map[string]string{"X-Forwarded-For": "198.51.100.1"}, wantIP: "203.0.113.7"},
		{name: "xff honoured from trusted proxy", remoteAddr: "10.1.2.3:1", headers: map[string]string{"X-Forwarded-For": "198.51.100.1, 10.1.2.3"}, wantIP: "198.51.100.1"},
		{name: "garbage xff falls back", remoteAddr: "10.1.2.3:1", headers: map[string]string{"X-Forwarded-For": "not-an-ip"}, wantIP: "10.1.2.3"},
		{name: "x-real-ip from trusted proxy", remoteAddr: "10.1.2.3:1", headers: map[string]string{"X-Real-IP": "198.51.100.9"}, wantIP: "198.51.100.9"},
		{name: "empty remote", remoteAddr: "", wantIP: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotIP, gotUA string
			h := NewMiddleware(Config{TrustedProxies: proxies}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotIP = requestcontext.ClientIP(r.Context())
				gotUA = requestcontext.UserAgent(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("User-Agent", "test-agent")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.wantIP, gotIP)
			assert.Equal(t, "test-agent", gotUA)
		})
	}
}

func TestParseTrustedProxiesRejectsBadCIDR(t *testing.T) {
	_, err := ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
}

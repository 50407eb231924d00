package http

import (
	"crypto/tls"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_AppliesConfig(t *testing.T) {
	cfg := PayTRClientConfig()
	client := NewHTTPClient(cfg, 15*time.Second)

	assert.Equal(t, 15*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, cfg.MaxConnsPerHost, transport.MaxConnsPerHost)
	assert.Equal(t, cfg.ResponseHeaderTimeout, transport.ResponseHeaderTimeout)
	assert.Equal(t, uint16(tls.VersionTLS12), transport.TLSClientConfig.MinVersion)
	assert.True(t, transport.ForceAttemptHTTP2)
}

func TestPayTRClientConfig_HeaderTimeoutBelowDefault(t *testing.T) {
	assert.Less(t, PayTRClientConfig().ResponseHeaderTimeout, DefaultClientConfig().ResponseHeaderTimeout)
}

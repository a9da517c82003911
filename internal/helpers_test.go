package internal

import (
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func splitHostPort(t *testing.T, raw string) (string, string) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	return host, port
}

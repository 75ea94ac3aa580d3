package pkg

import (
	"fmt"
	"net/http"
	"strings"
)

// ReadUserIP reads the IP address of the original client, preferring
// the proxy-set headers over the raw remote address.
func ReadUserIP(r *http.Request) (string, error) {
	ipAddr := r.Header.Get("X-Real-Ip")
	if ipAddr == "" {
		ipAddr = r.Header.Get("X-Forwarded-For")
	}
	if ipAddr == "" {
		ipAddr = r.RemoteAddr
	}

	if ipAddr == "" {
		return "", fmt.Errorf("unable to determine client ip")
	}

	if strings.HasPrefix(ipAddr, "127.0.0.1:") || strings.HasPrefix(ipAddr, "[::1]:") {
		return "localhost", nil
	}

	if host, _, found := strings.Cut(ipAddr, ":"); found {
		return host, nil
	}
	return ipAddr, nil
}

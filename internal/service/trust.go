package service

import (
	"net"
	"strings"
)

// normalizeIP maps IPv4-mapped IPv6 addresses back to their IPv4 form and
// drops a port if the caller handed us host:port.
func normalizeIP(remote string) string {
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	return strings.TrimPrefix(remote, "::ffff:")
}

func isLoopback(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1"
}

// TrustedSender reports whether remote is the configured backend process
// or the local machine. Only such senders may mint a first refresh token
// for an arbitrary identity; everyone else has to rotate an existing one.
func TrustedSender(remote, backend string) bool {
	ip := normalizeIP(remote)
	return (backend != "" && ip == normalizeIP(backend)) || isLoopback(ip)
}

package net

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// Scheme prefixes share links, e.g. inpaintboard://192.168.1.20:8888.
const Scheme = "inpaintboard://"

// WebSocketPath is where the host accepts peers.
const WebSocketPath = "/ws"

var ErrBadLink = errors.New("net: malformed share link")

// ShareLink returns the link peers use to join a session hosted at
// host:port.
func ShareLink(host netip.Addr, port uint16) string {
	return Scheme + netip.AddrPortFrom(host, port).String()
}

// IsLink reports whether s looks like a share link.
func IsLink(s string) bool { return strings.HasPrefix(s, Scheme) }

// ParseLink returns the websocket URL of the session a share link points to.
func ParseLink(link string) (string, error) {
	if !IsLink(link) {
		return "", fmt.Errorf("%w: missing %s prefix", ErrBadLink, Scheme)
	}
	addr := strings.TrimSuffix(strings.TrimPrefix(link, Scheme), "/")
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadLink, err)
	}
	if host == "" {
		return "", fmt.Errorf("%w: empty host", ErrBadLink)
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return "", fmt.Errorf("%w: bad port %q", ErrBadLink, port)
	}
	return "ws://" + net.JoinHostPort(host, port) + WebSocketPath, nil
}

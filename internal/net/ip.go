package net

import (
	"net"
	"net/netip"

	"InpaintBoard/internal/logging"
)

// routeTarget is never contacted; dialing UDP only selects a route.
const routeTarget = "192.0.2.1:9"

var loopback = netip.MustParseAddr("127.0.0.1")

// OutgoingAddr returns the address peers on the LAN should use to reach this
// host. It prefers the source address of the default route and falls back to
// the interface addresses when there is none. Loopback is the last resort.
func OutgoingAddr() (netip.Addr, error) {
	if conn, err := net.Dial("udp", routeTarget); err == nil {
		defer conn.Close()
		if ap, err := netip.ParseAddrPort(conn.LocalAddr().String()); err == nil && usable(ap.Addr()) {
			return ap.Addr().Unmap(), nil
		}
	}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return netip.Addr{}, err
	}
	if a, ok := pickAddr(addrs); ok {
		return a, nil
	}
	logging.Logger().Warn("no LAN address found, share link will use loopback")
	return loopback, nil
}

// pickAddr chooses among interface addresses: private IPv4 first, then any
// other global unicast address. IPv4 wins over IPv6 at equal rank.
func pickAddr(addrs []net.Addr) (netip.Addr, bool) {
	var best netip.Addr
	bestRank := 0
	for _, a := range addrs {
		pfx, err := netip.ParsePrefix(a.String())
		if err != nil {
			continue
		}
		ip := pfx.Addr().Unmap()
		if r := rank(ip); r > bestRank {
			best, bestRank = ip, r
		}
	}
	return best, bestRank > 0
}

func rank(ip netip.Addr) int {
	if !usable(ip) {
		return 0
	}
	r := 1
	if ip.IsPrivate() {
		r += 2
	}
	if ip.Is4() {
		r++
	}
	return r
}

func usable(ip netip.Addr) bool {
	return ip.IsValid() && ip.IsGlobalUnicast() && !ip.IsLoopback()
}

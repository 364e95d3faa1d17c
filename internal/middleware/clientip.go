package middleware

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// ClientIP returns the IP of the peer that opened the connection. Forwarding headers
// are ignored; use TrustedProxies.ClientIP behind a reverse proxy.
func ClientIP(ctx huma.Context) string {
	addr := ctx.RemoteAddr()

	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return ip
}

// TrustedProxies lists the reverse proxies whose forwarding headers are believed.
type TrustedProxies struct {
	prefixes []netip.Prefix
}

// ParseTrustedProxies accepts IP addresses and CIDR ranges. Blank entries are skipped.
func ParseTrustedProxies(entries ...string) (*TrustedProxies, error) {
	p := &TrustedProxies{}

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
			}

			p.prefixes = append(p.prefixes, prefix.Masked())

			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
		}

		addr = addr.Unmap()
		p.prefixes = append(p.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return p, nil
}

// Len returns the number of trusted ranges.
func (p *TrustedProxies) Len() int {
	if p == nil {
		return 0
	}

	return len(p.prefixes)
}

func (p *TrustedProxies) trusts(addr netip.Addr) bool {
	if p == nil {
		return false
	}

	addr = addr.Unmap()

	for _, prefix := range p.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}

// ClientIP resolves the client address. X-Forwarded-For and X-Real-IP are only read
// when the peer is a trusted proxy. X-Forwarded-For is walked from the right and the
// first hop that is not a trusted proxy is the client.
func (p *TrustedProxies) ClientIP(ctx huma.Context) string {
	peer := ClientIP(ctx)

	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !p.trusts(peerAddr) {
		return peer
	}

	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		client := peer
		hops := strings.Split(xff, ",")

		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}

			client = hop.Unmap().String()

			if !p.trusts(hop) {
				break
			}
		}

		return client
	}

	if xri, err := netip.ParseAddr(strings.TrimSpace(ctx.Header("X-Real-IP"))); err == nil {
		return xri.Unmap().String()
	}

	return peer
}

// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// blockedPrefixes は外部翻訳サービスの宛先として許可しないアドレス範囲。
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("100.64.0.0/10"), // CGNAT
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"), // クラウドメタデータを含む
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fc00::/7"),
}

// EndpointGuard は翻訳サービスのような公開エンドポイントへの接続を検証する。
// 静的検証はValidateURL、接続時のIP検証はsafeurlのDialerが行う。
type EndpointGuard struct{}

// NewEndpointGuard はEndpointGuardを生成する。
func NewEndpointGuard() *EndpointGuard {
	return &EndpointGuard{}
}

// ValidateURL はURLがhttp(s)で、ホストがlocalhostやブロック対象のIPでないことを検証する。
// DNS解決は行わない。
func (g *EndpointGuard) ValidateURL(rawURL string) error {
	_, err := parseEndpoint(rawURL)
	return err
}

// ClientFor はrawURLの宛先専用のHTTPクライアントを返す。
// スキームとポートはrawURLのものだけを許可し、プライベートアドレスへの接続はブロックする。
func (g *EndpointGuard) ClientFor(rawURL string, timeout time.Duration) (*http.Client, error) {
	ep, err := parseEndpoint(rawURL)
	if err != nil {
		return nil, err
	}

	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(ep.scheme).
		SetAllowedPorts(ep.port).
		Build()

	return safeurl.Client(config).Client, nil
}

type endpoint struct {
	scheme string
	port   int
}

func parseEndpoint(rawURL string) (endpoint, error) {
	if strings.TrimSpace(rawURL) == "" {
		return endpoint{}, fmt.Errorf("empty URL")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return endpoint{}, fmt.Errorf("invalid URL: %w", err)
	}

	ep := endpoint{scheme: strings.ToLower(parsed.Scheme)}
	switch ep.scheme {
	case "https":
		ep.port = 443
	case "http":
		ep.port = 80
	default:
		return endpoint{}, fmt.Errorf("disallowed scheme: %q", parsed.Scheme)
	}
	if p := parsed.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return endpoint{}, fmt.Errorf("invalid port: %q", p)
		}
		ep.port = n
	}

	host := parsed.Hostname()
	if host == "" {
		return endpoint{}, fmt.Errorf("empty host in URL: %s", rawURL)
	}
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return endpoint{}, fmt.Errorf("blocked host: %s", host)
	}
	if addr, err := netip.ParseAddr(host); err == nil && isBlockedAddr(addr) {
		return endpoint{}, fmt.Errorf("blocked IP address: %s", addr)
	}
	return ep, nil
}

func isBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsUnspecified() {
		return true
	}
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

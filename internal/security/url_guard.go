// Package security は外部URLの検証と自由入力テキストの無害化を提供する。
package security

import (
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// maxURLLength はユーザーが入力できる画像URLの最大長。
const maxURLLength = 2048

// allowedSchemes はカバーアート・写真URLおよび外部API呼び出しで許可するスキーム。
var allowedSchemes = []string{"http", "https"}

// blockedPrefixes は画像URLとして受け付けないアドレス範囲。
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("127.0.0.0/8"),
	// クラウドメタデータ (169.254.169.254) を含む
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fc00::/7"),
}

var blockedHostnames = []string{"localhost", "metadata.google.internal"}

// URLGuard は外部URLへのアクセスを制限する。
type URLGuard struct{}

// NewURLGuard は URLGuard を生成する。
func NewURLGuard() *URLGuard {
	return &URLGuard{}
}

// NewSafeClient はメタデータAPI呼び出し用のHTTPクライアントを生成する。
// 接続時にDNS解決後のアドレスを検証するため、プライベートアドレスへの接続や
// DNS再バインディングは接続段階で拒否される。
func (g *URLGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateURL はユーザーが入力したカバーアート・写真のURLを静的に検証する。
// DNS解決は行わない。画像はブラウザが直接取得するため、内部アドレスや
// 資格情報付きURLを埋め込ませないことが目的。
func (g *URLGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}
	if len(rawURL) > maxURLLength {
		return fmt.Errorf("URL too long: %d bytes (max %d)", len(rawURL), maxURLLength)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %q (allowed: %v)", scheme, allowedSchemes)
	}
	if parsed.User != nil {
		return fmt.Errorf("credentials in URL are not allowed")
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if isBlockedAddr(addr) {
			return fmt.Errorf("blocked IP address: %s", addr)
		}
		return nil
	}

	if isBlockedHostname(host) {
		return fmt.Errorf("blocked host: %s", host)
	}
	return nil
}

func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isBlockedAddr はIPv4射影IPv6アドレスもIPv4として判定する。
func isBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func isBlockedHostname(host string) bool {
	lower := strings.TrimSuffix(strings.ToLower(host), ".")
	for _, blocked := range blockedHostnames {
		if lower == blocked || strings.HasSuffix(lower, "."+blocked) {
			return true
		}
	}
	return false
}

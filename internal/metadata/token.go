package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// tokenRefreshMargin は実際の有効期限より前倒しでトークンを失効扱いにする余裕。
const tokenRefreshMargin = 5 * time.Minute

// AccessToken はゲーム情報APIのアプリアクセストークンを返す。
// キャッシュ済みトークンが有効期限内ならそれを返し、期限切れなら
// client_credentials グラントで再取得する。同時の再取得は1回にまとめられる。
// クライアントシークレットが未設定の場合は ErrNoCredentials を返す。
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.clientSecret == "" {
		c.warnNoCredentials.Do(func() {
			c.logger.Warn("クライアントシークレットが未設定のため、ゲーム情報APIは利用できません",
				slog.String("client_id", c.clientID),
			)
		})
		return "", ErrNoCredentials
	}

	if token, ok := c.cachedToken(); ok {
		return token, nil
	}

	v, err, _ := c.tokenGroup.Do("token", func() (any, error) {
		// 待機中に他のゴルーチンが取得済みの場合はそれを使う
		if token, ok := c.cachedToken(); ok {
			return token, nil
		}
		return c.exchangeToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// cachedToken は有効期限内のキャッシュ済みトークンを返す。
func (c *Client) cachedToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, true
	}
	return "", false
}

// invalidateToken はキャッシュ済みトークンが used と一致する場合にのみ破棄する。
// 401を受けた時点で別のゴルーチンが取得した新しいトークンを消さないため。
func (c *Client) invalidateToken(used string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == used {
		c.token = ""
		c.tokenExpiry = time.Time{}
	}
}

// exchangeToken はトークンエンドポイントへフォームPOSTしてトークンを取得し、キャッシュする。
func (c *Client) exchangeToken(ctx context.Context) (string, error) {
	cfg := clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	// oauth2パッケージにSSRF防止済みのHTTPクライアントを使わせる
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	start := time.Now()
	tok, err := cfg.Token(ctx)
	c.metrics.RecordMetadataLatency("token", time.Since(start))
	c.metrics.RecordTokenExchange(err == nil)
	if err != nil {
		c.logger.Error("アクセストークンの取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("アクセストークンの取得に失敗しました: %w", err)
	}

	// 有効期限は発行時刻 + TTL - 5分。TTLが返らない場合はキャッシュしない。
	issued := c.now()
	expiry := issued
	if !tok.Expiry.IsZero() {
		ttl := time.Until(tok.Expiry).Round(time.Second)
		expiry = issued.Add(ttl - tokenRefreshMargin)
	}

	c.mu.Lock()
	c.token = tok.AccessToken
	c.tokenExpiry = expiry
	c.mu.Unlock()

	c.logger.Info("アクセストークンを取得しました",
		slog.Time("expires_at", expiry),
	)

	return tok.AccessToken, nil
}

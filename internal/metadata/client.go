// Package metadata は外部のゲーム情報API（Twitch Helix互換）のクライアントを提供する。
// タイトル検索、ID指定取得、人気タイトル、カバーアート取得とその一括補完を含む。
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/hitoshi/gamevault/internal/metrics"
)

const (
	// DefaultTokenURL はトークンエンドポイントの既定値。
	DefaultTokenURL = "https://id.twitch.tv/oauth2/token"
	// DefaultAPIBase はゲーム情報APIのベースURLの既定値。
	DefaultAPIBase = "https://api.twitch.tv/helix"

	// DefaultSearchLimit は検索結果の既定件数。
	DefaultSearchLimit = 20
	// maxLimit はAPIが受け付ける1リクエストあたりの最大件数。
	maxLimit = 100
	// coverLookupLimit はカバーアート検索で取得する候補数。
	coverLookupLimit = 5
	// minQueryLength は検索を実行する最小文字数（前後の空白を除く）。
	minQueryLength = 2

	// coverArtSize はボックスアートURLのサイズ指定に埋め込む値。
	coverArtSize = "500x700"
	// maxResponseSize はレスポンスボディの最大読み取りサイズ。
	maxResponseSize = 1 << 20
)

// Title はゲーム情報APIのタイトルを正規化したもの。
type Title struct {
	ID        string   `json:"id"`
	Name      string   `json:"title"`
	BoxArtURL string   `json:"boxArtUrl,omitempty"`
	IGDBID    string   `json:"igdbId,omitempty"`
	Genres    []string `json:"genre,omitempty"`
}

// Result は検索系呼び出しの結果。
// Err は「結果なし」と「サービス利用不可」を区別するために保持し、Titles は常に空スライス以上。
type Result struct {
	Titles []Title
	Err    error
}

// Available は呼び出しがサービス側の理由で失敗していないかを返す。
func (r Result) Available() bool {
	return r.Err == nil
}

// Details はタイトルの詳細情報。
// APIはパブリッシャー・デベロッパーを提供しないため空文字列となり、
// ジャンルはタイトルからの推定値となる。
type Details struct {
	ID          string   `json:"twitchId"`
	Name        string   `json:"name"`
	BoxArtURL   string   `json:"boxArtUrl,omitempty"`
	Publisher   string   `json:"publisher"`
	Developer   string   `json:"developer"`
	Genres      []string `json:"genre"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
}

// Options はClientの接続設定。空の項目は既定値で補われる。
type Options struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIBase      string
}

// Client はゲーム情報APIのクライアント。複数ゴルーチンから安全に利用できる。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.MetricsCollector

	clientID     string
	clientSecret string
	tokenURL     string
	apiBase      string

	now func() time.Time // テスト用に差し替え可能

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	tokenGroup  singleflight.Group

	warnNoCredentials sync.Once
}

// NewClient はClientの新しいインスタンスを生成する。
// metricsCollector が nil の場合は何も記録しない。
func NewClient(httpClient *http.Client, logger *slog.Logger, metricsCollector metrics.MetricsCollector, opts Options) *Client {
	if metricsCollector == nil {
		metricsCollector = metrics.Nop{}
	}
	if opts.TokenURL == "" {
		opts.TokenURL = DefaultTokenURL
	}
	if opts.APIBase == "" {
		opts.APIBase = DefaultAPIBase
	}
	return &Client{
		httpClient:   httpClient,
		logger:       logger,
		metrics:      metricsCollector,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		tokenURL:     opts.TokenURL,
		apiBase:      strings.TrimRight(opts.APIBase, "/"),
		now:          time.Now,
	}
}

// Enabled はクライアントシークレットが設定されているかを返す。
func (c *Client) Enabled() bool {
	return c.clientSecret != ""
}

// SearchTitles はタイトル名で検索する。
// 前後の空白を除いたクエリが2文字未満の場合はAPIを呼ばずに空の結果を返す。
// 401の場合はトークンを破棄して1回だけ再試行し、それ以外の失敗は空の結果とする。
func (c *Client) SearchTitles(ctx context.Context, query string, limit int) Result {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < minQueryLength {
		return Result{Titles: []Title{}}
	}

	params := url.Values{}
	params.Set("name", q)
	params.Set("first", strconv.Itoa(clampLimit(limit)))

	games, err := c.fetchGames(ctx, "search", "/games", params)
	return Result{Titles: normalize(games), Err: err}
}

// Search は SearchTitles の結果から一覧のみを返す。
func (c *Client) Search(ctx context.Context, query string) []Title {
	return c.SearchTitles(ctx, query, DefaultSearchLimit).Titles
}

// TitleByID はIDでタイトルを取得する。空IDや失敗時は nil を返す。
func (c *Client) TitleByID(ctx context.Context, id string) *Title {
	if strings.TrimSpace(id) == "" {
		return nil
	}

	params := url.Values{}
	params.Set("id", id)

	games, err := c.fetchGames(ctx, "lookup", "/games", params)
	if err != nil || len(games) == 0 {
		return nil
	}
	t := normalize(games)[0]
	return &t
}

// PopularTitles は視聴数上位のタイトルを取得する。失敗時の扱いは SearchTitles と同じ。
func (c *Client) PopularTitles(ctx context.Context, limit int) Result {
	params := url.Values{}
	params.Set("first", strconv.Itoa(clampLimit(limit)))

	games, err := c.fetchGames(ctx, "top", "/games/top", params)
	return Result{Titles: normalize(games), Err: err}
}

// Popular は PopularTitles の結果から一覧のみを返す。
func (c *Client) Popular(ctx context.Context, limit int) []Title {
	return c.PopularTitles(ctx, limit).Titles
}

// PopularEnhanced は人気タイトルのそれぞれに推定ジャンルを付与して返す。
func (c *Client) PopularEnhanced(ctx context.Context, limit int) []Title {
	titles := c.Popular(ctx, limit)
	for i := range titles {
		titles[i].Genres = InferGenres(titles[i].Name)
	}
	return titles
}

// CoverArtByTitle はタイトル名からカバーアートURLを取得する。
// 大文字小文字を無視した完全一致を優先し、なければ先頭の候補を使う。
// 取得できない場合は空文字列を返す。
func (c *Client) CoverArtByTitle(ctx context.Context, name string) string {
	best, _ := c.bestMatch(ctx, name)
	if best == nil {
		return ""
	}
	return best.BoxArtURL
}

// EnhancedDetails はタイトル名から詳細情報を取得する。見つからない場合は nil を返す。
func (c *Client) EnhancedDetails(ctx context.Context, name string) *Details {
	best, _ := c.bestMatch(ctx, name)
	if best == nil {
		return nil
	}
	return &Details{
		ID:        best.ID,
		Name:      best.Name,
		BoxArtURL: best.BoxArtURL,
		Genres:    InferGenres(best.Name),
	}
}

// bestMatch は検索候補から name に最も近いタイトルを選ぶ。
// 候補がない場合は nil と、取得に失敗していればその原因を返す。
func (c *Client) bestMatch(ctx context.Context, name string) (*Title, error) {
	res := c.SearchTitles(ctx, name, coverLookupLimit)
	if len(res.Titles) == 0 {
		return nil, res.Err
	}

	want := strings.TrimSpace(name)
	for i := range res.Titles {
		if strings.EqualFold(res.Titles[i].Name, want) {
			return &res.Titles[i], nil
		}
	}
	return &res.Titles[0], nil
}

// helixGame はAPIレスポンスのゲーム要素。
type helixGame struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BoxArtURL string `json:"box_art_url"`
	IGDBID    string `json:"igdb_id"`
}

type helixResponse struct {
	Data []helixGame `json:"data"`
}

// fetchGames はAPIを呼び出し、メトリクスを記録する。
func (c *Client) fetchGames(ctx context.Context, endpoint, path string, params url.Values) ([]helixGame, error) {
	start := time.Now()
	games, err := c.doFetch(ctx, path, params, true)
	c.metrics.RecordMetadataLatency(endpoint, time.Since(start))

	switch {
	case errors.Is(err, ErrNoCredentials):
		c.metrics.RecordMetadataRequest(endpoint, metrics.OutcomeUnavailable)
	case err != nil:
		c.metrics.RecordMetadataRequest(endpoint, metrics.OutcomeError)
	case len(games) == 0:
		c.metrics.RecordMetadataRequest(endpoint, metrics.OutcomeEmpty)
	default:
		c.metrics.RecordMetadataRequest(endpoint, metrics.OutcomeOK)
	}

	return games, err
}

// doFetch はトークンを付与してGETリクエストを送信する。
// retry が true の場合、401を受けるとトークンを破棄して1回だけ再試行する。
func (c *Client) doFetch(ctx context.Context, path string, params url.Values, retry bool) ([]helixGame, error) {
	// 1. トークン取得
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	// 2. リクエスト作成
	reqURL := c.apiBase + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "GameVault/1.0")

	// 3. リクエスト実行
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("ゲーム情報APIの呼び出しに失敗しました",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("ゲーム情報APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordHTTPStatus(resp.StatusCode)

	// 4. ステータス分類
	switch class := ClassifyStatus(resp.StatusCode); class {
	case StatusOK:
	case StatusReauth:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		if retry {
			c.logger.Info("トークンが無効になったため再取得して再試行します", slog.String("path", path))
			c.invalidateToken(token)
			return c.doFetch(ctx, path, params, false)
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Class: class}
	default:
		c.logger.Warn("ゲーム情報APIがエラーステータスを返しました",
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode, Class: class}
	}

	// 5. JSONデコード
	var body helixResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		c.logger.Error("ゲーム情報APIのレスポンスのパースに失敗しました",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return body.Data, nil
}

// normalize はAPIのゲーム要素を Title に変換する。nil入力にも空スライスを返す。
func normalize(games []helixGame) []Title {
	titles := make([]Title, 0, len(games))
	for _, g := range games {
		titles = append(titles, Title{
			ID:        g.ID,
			Name:      g.Name,
			BoxArtURL: sizeBoxArt(g.BoxArtURL),
			IGDBID:    g.IGDBID,
		})
	}
	return titles
}

// sizeBoxArt はボックスアートURLのサイズプレースホルダーを置換する。
func sizeBoxArt(raw string) string {
	return strings.ReplaceAll(raw, "{width}x{height}", coverArtSize)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSearchLimit
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}

package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hitoshi/gamevault/internal/metadata"
)

const (
	defaultSearchLimit  = 10
	defaultPopularLimit = 20
	maxMetadataLimit    = 50
)

// MetadataServiceInterface は外部ゲーム情報サービスへの問い合わせ。
// *metadata.Client が満たす。
type MetadataServiceInterface interface {
	SearchTitles(ctx context.Context, query string, limit int) metadata.Result
	PopularTitles(ctx context.Context, limit int) metadata.Result
}

// MetadataHandler はゲーム情報検索のHTTPハンドラー。
// サービスが利用できない場合も200で空の一覧と available=false を返す。
type MetadataHandler struct {
	service MetadataServiceInterface
}

// NewMetadataHandler はMetadataHandlerを生成する。
func NewMetadataHandler(service MetadataServiceInterface) *MetadataHandler {
	return &MetadataHandler{service: service}
}

// metadataResponse はタイトル一覧のレスポンス。
type metadataResponse struct {
	Titles    []metadata.Title `json:"titles"`
	Available bool             `json:"available"`
}

// Search はタイトルを検索する。
// GET /api/metadata/search?q=&limit=
func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), defaultSearchLimit)
	res := h.service.SearchTitles(r.Context(), r.URL.Query().Get("q"), limit)
	writeJSON(w, http.StatusOK, toMetadataResponse(res))
}

// Popular は人気タイトルを返す。
// GET /api/metadata/popular?limit=
func (h *MetadataHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), defaultPopularLimit)
	res := h.service.PopularTitles(r.Context(), limit)
	for i := range res.Titles {
		if len(res.Titles[i].Genres) == 0 {
			res.Titles[i].Genres = metadata.InferGenres(res.Titles[i].Name)
		}
	}
	writeJSON(w, http.StatusOK, toMetadataResponse(res))
}

func toMetadataResponse(res metadata.Result) metadataResponse {
	titles := res.Titles
	if titles == nil {
		titles = []metadata.Title{}
	}
	return metadataResponse{Titles: titles, Available: res.Available()}
}

// parseLimit は件数指定を解釈する。不正な値は既定値、上限を超える値は上限に丸める。
func parseLimit(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	if n > maxMetadataLimit {
		return maxMetadataLimit
	}
	return n
}

package handler

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/gamevault/internal/collection"
	"github.com/hitoshi/gamevault/internal/export"
	"github.com/hitoshi/gamevault/internal/model"
	"github.com/hitoshi/gamevault/internal/repository"
	"github.com/hitoshi/gamevault/internal/view"
)

// CollectionServiceInterface はコレクションハンドラーが必要とするサービスインターフェース。
// *collection.Service が満たす。
type CollectionServiceInterface interface {
	State(ctx context.Context, userID string) (*repository.CollectionState, error)
	Collection(ctx context.Context, userID string, p view.CollectionParams) (view.CollectionView, uint64, error)
	Stats(ctx context.Context, userID string) (*view.Summary, error)
	Analytics(ctx context.Context, userID string) (*collection.Analytics, error)
	BackfillCovers(ctx context.Context, userID string) (collection.BackfillResult, error)

	ToggleGameSale(ctx context.Context, userID, gameID string) (*model.Game, error)
	ToggleGameTrade(ctx context.Context, userID, gameID string) (*model.Game, error)
	ToggleConsoleSale(ctx context.Context, userID, consoleID string) (*model.Console, error)
	ToggleConsoleTrade(ctx context.Context, userID, consoleID string) (*model.Console, error)

	AddTag(ctx context.Context, userID, gameID, tag string) (*model.Game, error)
	RemoveTag(ctx context.Context, userID, gameID, tag string) (*model.Game, error)
	TagSuggestions(ctx context.Context, userID, gameID, input string) ([]string, error)
	SetRating(ctx context.Context, userID, gameID string, rating *int) (*model.Game, error)
	SetPlaytime(ctx context.Context, userID, gameID string, hours *float64) (*model.Game, error)

	AddGame(ctx context.Context, userID string, in model.Game) (*model.Game, error)
	AddConsole(ctx context.Context, userID string, in model.Console) (*model.Console, error)
}

// UsernameFinder はエクスポートのファイル名に使うユーザー名を取得する。
type UsernameFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// CollectionHandler は操作ユーザーのコレクションに関するHTTPハンドラー。
type CollectionHandler struct {
	service CollectionServiceInterface
	users   UsernameFinder
	now     func() time.Time
}

// NewCollectionHandler はCollectionHandlerを生成する。
func NewCollectionHandler(service CollectionServiceInterface, users UsernameFinder) *CollectionHandler {
	return &CollectionHandler{service: service, users: users, now: time.Now}
}

// collectionResponse はコレクション一覧のレスポンス。
type collectionResponse struct {
	view.CollectionView
	Revision uint64 `json:"revision"`
}

// ListCollection は絞り込み・並び替え済みのコレクションを返す。
// GET /api/collection?type=&console=&condition=&availability=&collection=&search=&sort=
func (h *CollectionHandler) ListCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	params := view.CollectionParams{
		ItemType:     view.ItemType(q.Get("type")),
		Platform:     firstNonEmpty(q.Get("console"), q.Get("platform")),
		Condition:    q.Get("condition"),
		Availability: view.Availability(q.Get("availability")),
		Collection:   q.Get("collection"),
		Search:       q.Get("search"),
		Sort:         view.SortKey(q.Get("sort")),
	}

	v, rev, err := h.service.Collection(r.Context(), userID, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collectionResponse{CollectionView: v, Revision: rev})
}

// GetStats はコレクションの集計値を返す。
// GET /api/collection/stats
func (h *CollectionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetAnalytics は集計値と各軸の分布を返す。
// GET /api/analytics
func (h *CollectionHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	a, err := h.service.Analytics(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Export はコレクションを .xlsx として返す。
// GET /api/collection/export
func (h *CollectionHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	state, err := h.service.State(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var username string
	if u, err := h.users.FindByID(r.Context(), userID); err == nil && u != nil {
		username = u.Username
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, state.Games, state.Consoles); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(username, h.now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// BackfillCovers はカバーアート未設定のゲームについて取得を試みる。
// POST /api/collection/covers/backfill
func (h *CollectionHandler) BackfillCovers(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	res, err := h.service.BackfillCovers(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ToggleGameSale はゲームの販売フラグを切り替える。
// POST /api/collection/games/{id}/sale
func (h *CollectionHandler) ToggleGameSale(w http.ResponseWriter, r *http.Request) {
	h.gameMutation(w, r, h.service.ToggleGameSale)
}

// ToggleGameTrade はゲームのトレードフラグを切り替える。
// POST /api/collection/games/{id}/trade
func (h *CollectionHandler) ToggleGameTrade(w http.ResponseWriter, r *http.Request) {
	h.gameMutation(w, r, h.service.ToggleGameTrade)
}

// ToggleConsoleSale は本体の販売フラグを切り替える。
// POST /api/collection/consoles/{id}/sale
func (h *CollectionHandler) ToggleConsoleSale(w http.ResponseWriter, r *http.Request) {
	h.consoleMutation(w, r, h.service.ToggleConsoleSale)
}

// ToggleConsoleTrade は本体のトレードフラグを切り替える。
// POST /api/collection/consoles/{id}/trade
func (h *CollectionHandler) ToggleConsoleTrade(w http.ResponseWriter, r *http.Request) {
	h.consoleMutation(w, r, h.service.ToggleConsoleTrade)
}

type tagRequest struct {
	Tag string `json:"tag"`
}

// AddTag はゲームにタグを追加する。
// POST /api/collection/games/{id}/tags
func (h *CollectionHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}
	h.gameMutation(w, r, func(ctx context.Context, userID, id string) (*model.Game, error) {
		return h.service.AddTag(ctx, userID, id, req.Tag)
	})
}

// RemoveTag はゲームからタグを外す。
// DELETE /api/collection/games/{id}/tags/{tag}
func (h *CollectionHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	h.gameMutation(w, r, func(ctx context.Context, userID, id string) (*model.Game, error) {
		return h.service.RemoveTag(ctx, userID, id, tag)
	})
}

// TagSuggestions はタグ入力の候補を返す。
// GET /api/collection/games/{id}/tags/suggestions?q=
func (h *CollectionHandler) TagSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	suggestions, err := h.service.TagSuggestions(r.Context(), userID, chi.URLParam(r, "id"), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions})
}

type ratingRequest struct {
	Rating *int `json:"rating"`
}

// SetRating はゲームの評価を設定する。null で評価を外す。
// PUT /api/collection/games/{id}/rating
func (h *CollectionHandler) SetRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}
	h.gameMutation(w, r, func(ctx context.Context, userID, id string) (*model.Game, error) {
		return h.service.SetRating(ctx, userID, id, req.Rating)
	})
}

type playtimeRequest struct {
	Hours *float64 `json:"playtime"`
}

// SetPlaytime はゲームのプレイ時間を設定する。null でプレイ時間を外す。
// PUT /api/collection/games/{id}/playtime
func (h *CollectionHandler) SetPlaytime(w http.ResponseWriter, r *http.Request) {
	var req playtimeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}
	h.gameMutation(w, r, func(ctx context.Context, userID, id string) (*model.Game, error) {
		return h.service.SetPlaytime(ctx, userID, id, req.Hours)
	})
}

// AddGame は追加するゲームを検証して受け付ける。コレクションには追加されない。
// POST /api/games
func (h *CollectionHandler) AddGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var in model.Game
	if err := decodeJSON(r, &in); err != nil {
		handleServiceError(w, err)
		return
	}
	g, err := h.service.AddGame(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, g)
}

// AddConsole は追加する本体を検証して受け付ける。コレクションには追加されない。
// POST /api/consoles
func (h *CollectionHandler) AddConsole(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var in model.Console
	if err := decodeJSON(r, &in); err != nil {
		handleServiceError(w, err)
		return
	}
	c, err := h.service.AddConsole(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, c)
}

func (h *CollectionHandler) gameMutation(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, id string) (*model.Game, error)) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	g, err := fn(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *CollectionHandler) consoleMutation(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, id string) (*model.Console, error)) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	c, err := fn(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

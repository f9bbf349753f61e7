package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/gamevault/internal/collection"
	"github.com/hitoshi/gamevault/internal/view"
)

// CommunityServiceInterface はマーケットプレイス・ユーザー一覧・プロフィールの操作。
// *collection.Service が満たす。
type CommunityServiceInterface interface {
	Marketplace(ctx context.Context, p view.MarketplaceParams) (*collection.MarketplaceResult, error)
	Explore(ctx context.Context, actingUserID string, p view.ExploreParams) (*collection.ExploreResult, error)
	Profile(ctx context.Context, actingUserID, userID string) (*collection.Profile, error)
	SimulatePurchase(ctx context.Context, userID, ownerID string, kind view.ItemKind, itemID string) (*collection.Acknowledgement, error)
	SimulateTradeRequest(ctx context.Context, userID string, req collection.TradeRequest) (*collection.Acknowledgement, error)
}

// CommunityHandler は他ユーザーとのやり取りに関するHTTPハンドラー。
type CommunityHandler struct {
	service CommunityServiceInterface
}

// NewCommunityHandler はCommunityHandlerを生成する。
func NewCommunityHandler(service CommunityServiceInterface) *CommunityHandler {
	return &CommunityHandler{service: service}
}

// Marketplace は販売・トレード中のアイテム一覧を返す。
// GET /api/marketplace?type=&console=&search=&sort=
func (h *CommunityHandler) Marketplace(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.service.Marketplace(r.Context(), view.MarketplaceParams{
		Type:     view.ListingType(q.Get("type")),
		Platform: firstNonEmpty(q.Get("console"), q.Get("platform")),
		Search:   q.Get("search"),
		Sort:     view.MarketSort(q.Get("sort")),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type purchaseRequest struct {
	OwnerID string `json:"ownerId"`
}

// Purchase は出品の購入を受け付ける。実際の決済は行わない。
// ボディは省略可能で、ownerId を省略した場合は最初に見つかった出品を対象にする。
// POST /api/marketplace/{type}/{id}/purchase
func (h *CommunityHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var req purchaseRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err)
			return
		}
	}
	ack, err := h.service.SimulatePurchase(r.Context(), userID, req.OwnerID,
		view.ItemKind(chi.URLParam(r, "type")), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}

// TradeRequest はトレード申込みを受け付ける。実際のトレードは行わない。
// POST /api/trades
func (h *CommunityHandler) TradeRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var req collection.TradeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}
	ack, err := h.service.SimulateTradeRequest(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}

// Explore は操作ユーザー以外のユーザー一覧を返す。
// GET /api/explore?search=&console=&sort=&filter=
func (h *CommunityHandler) Explore(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	res, err := h.service.Explore(r.Context(), userID, view.ExploreParams{
		Search:       q.Get("search"),
		Platform:     firstNonEmpty(q.Get("console"), q.Get("platform")),
		Sort:         view.ExploreSort(q.Get("sort")),
		Availability: view.ExploreAvailability(firstNonEmpty(q.Get("filter"), q.Get("availability"))),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Profile はユーザーのプロフィールと集計値を返す。
// GET /api/users/{id}
func (h *CommunityHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	p, err := h.service.Profile(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/gamevault/internal/collection"
	"github.com/hitoshi/gamevault/internal/model"
)

// PreferencesServiceInterface はカスタムコレクション・ウィッシュリストの操作。
// *collection.Service が満たす。
type PreferencesServiceInterface interface {
	CustomCollections(ctx context.Context, userID string) ([]collection.CollectionSummary, error)
	CreateCollection(ctx context.Context, userID string, in collection.CollectionInput) (*model.CustomCollection, error)
	DeleteCollection(ctx context.Context, userID, collectionID string) error
	Wishlist(ctx context.Context, userID string) ([]model.WishlistItem, error)
	AddWishlistItem(ctx context.Context, userID string, in collection.WishlistInput) (*model.WishlistItem, error)
	RemoveWishlistItem(ctx context.Context, userID, itemID string) error
}

// PreferencesHandler はユーザー設定に保存される項目のHTTPハンドラー。
type PreferencesHandler struct {
	service PreferencesServiceInterface
}

// NewPreferencesHandler はPreferencesHandlerを生成する。
func NewPreferencesHandler(service PreferencesServiceInterface) *PreferencesHandler {
	return &PreferencesHandler{service: service}
}

// ListCollections はカスタムコレクション一覧を返す。先頭は常に all。
// GET /api/collections
func (h *PreferencesHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	list, err := h.service.CustomCollections(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateCollection はカスタムコレクションを作成する。
// POST /api/collections
func (h *PreferencesHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var in collection.CollectionInput
	if err := decodeJSON(r, &in); err != nil {
		handleServiceError(w, err)
		return
	}
	c, err := h.service.CreateCollection(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// DeleteCollection はカスタムコレクションを削除する。all は削除できない。
// DELETE /api/collections/{id}
func (h *PreferencesHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCollection(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWishlist はウィッシュリストを返す。
// GET /api/wishlist
func (h *PreferencesHandler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	items, err := h.service.Wishlist(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// AddWishlistItem はウィッシュリストに追加する。
// POST /api/wishlist
func (h *PreferencesHandler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var in collection.WishlistInput
	if err := decodeJSON(r, &in); err != nil {
		handleServiceError(w, err)
		return
	}
	item, err := h.service.AddWishlistItem(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// RemoveWishlistItem はウィッシュリストから削除する。
// DELETE /api/wishlist/{id}
func (h *PreferencesHandler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveWishlistItem(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

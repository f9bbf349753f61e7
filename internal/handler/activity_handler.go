package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/hitoshi/gamevault/internal/activity"
	"github.com/hitoshi/gamevault/internal/view"
)

// ActivityServiceInterface はコミュニティのアクティビティフィード。
// *activity.Service が満たす。
type ActivityServiceInterface interface {
	Feed(ctx context.Context, category view.ActivityCategory) ([]activity.Entry, error)
	WriteAtom(ctx context.Context, w io.Writer, category view.ActivityCategory, baseURL string) error
}

// ActivityHandler はアクティビティフィードのHTTPハンドラー。
type ActivityHandler struct {
	service ActivityServiceInterface
	baseURL string
}

// NewActivityHandler はActivityHandlerを生成する。baseURL はAtomのリンク生成に使う。
func NewActivityHandler(service ActivityServiceInterface, baseURL string) *ActivityHandler {
	return &ActivityHandler{service: service, baseURL: baseURL}
}

// Feed はカテゴリで絞り込んだアクティビティを新しい順に返す。
// GET /api/activity?filter=all|trades|sales|collections|social
func (h *ActivityHandler) Feed(w http.ResponseWriter, r *http.Request) {
	category, err := view.ParseActivityCategory(r.URL.Query().Get("filter"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	entries, err := h.service.Feed(r.Context(), category)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Atom は同じ内容をAtomフィードとして返す。
// GET /api/activity.atom?filter=
func (h *ActivityHandler) Atom(w http.ResponseWriter, r *http.Request) {
	category, err := view.ParseActivityCategory(r.URL.Query().Get("filter"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.WriteAtom(r.Context(), &buf, category, h.baseURL); err != nil {
		handleServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

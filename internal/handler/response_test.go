package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/gamevault/internal/middleware"
	"github.com/hitoshi/gamevault/internal/model"
)

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *model.APIError
		want int
	}{
		{model.NewUserNotFoundError("u"), http.StatusNotFound},
		{model.NewItemNotFoundError("g"), http.StatusNotFound},
		{model.NewCollectionNotFoundError("c"), http.StatusNotFound},
		{model.NewWishlistItemNotFoundError("w"), http.StatusNotFound},
		{model.NewInvalidFilterError("type", "x"), http.StatusBadRequest},
		{model.NewInvalidSortError("x"), http.StatusBadRequest},
		{model.NewInvalidRatingError(11), http.StatusBadRequest},
		{model.NewInvalidPlaytimeError(-1), http.StatusBadRequest},
		{model.NewInvalidRequestError("x"), http.StatusBadRequest},
		{model.NewInvalidURLError("x"), http.StatusBadRequest},
		{model.NewReservedCollectionError(), http.StatusConflict},
		{model.NewUnauthorizedError("x"), http.StatusUnauthorized},
		{model.NewMetadataUnavailableError(), http.StatusServiceUnavailable},
		{&model.APIError{Code: "SOMETHING_ELSE"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := mapAPIErrorToHTTPStatus(tt.err); got != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.err.Code, got, tt.want)
		}
	}
}

func TestHandleServiceError_WrappedAPIError(t *testing.T) {
	w := httptest.NewRecorder()
	handleServiceError(w, fmt.Errorf("context: %w", model.NewItemNotFoundError("g9")))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスのデコードに失敗した: %v", err)
	}
	if body.Code != model.ErrCodeItemNotFound {
		t.Errorf("code = %q", body.Code)
	}
}

func TestHandleServiceError_InternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	handleServiceError(w, errors.New("connection refused: secret-host:5432"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret-host") {
		t.Errorf("内部エラーの詳細がレスポンスに含まれた: %s", w.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Tag string `json:"tag"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"tag":"rpg"}`))
	if err := decodeJSON(req, &v); err != nil || v.Tag != "rpg" {
		t.Errorf("decodeJSON = %v, tag %q", err, v.Tag)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	err := decodeJSON(req, &v)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRequest {
		t.Errorf("不正なJSONで INVALID_REQUEST が返らなかった: %v", err)
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 10},
		{"abc", 10},
		{"0", 10},
		{"-3", 10},
		{"5", 5},
		{"50", 50},
		{"500", 50},
	}
	for _, tt := range tests {
		if got := parseLimit(tt.in, 10); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

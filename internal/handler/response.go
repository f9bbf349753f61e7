package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/gamevault/internal/middleware"
	"github.com/hitoshi/gamevault/internal/model"
)

// maxRequestBodySize はJSONリクエストボディの最大サイズ。
const maxRequestBodySize = 1 << 20

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// decodeJSON はリクエストボディをデコードする。不正な場合は INVALID_REQUEST を返す。
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	if err := dec.Decode(v); err != nil {
		return model.NewInvalidRequestError("リクエストボディの解析に失敗しました")
	}
	return nil
}

// actingUser はセッションミドルウェアが注入した操作ユーザーIDを返す。
// 取得できない場合は401を書き込んで false を返す。
func actingUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError(""))
		return "", false
	}
	return userID, true
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUserNotFound, model.ErrCodeItemNotFound,
		model.ErrCodeCollectionNotFound, model.ErrCodeWishlistNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidFilter, model.ErrCodeInvalidSort, model.ErrCodeInvalidRating,
		model.ErrCodeInvalidPlaytime, model.ErrCodeInvalidRequest, model.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case model.ErrCodeReservedCollection:
		return http.StatusConflict
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeMetadataUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

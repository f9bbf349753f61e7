package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hitoshi/gamevault/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// NewErrorResponseBody はAPIErrorをレスポンスボディに変換する。nil は内部エラーとして扱う。
func NewErrorResponseBody(apiErr *model.APIError) ErrorResponseBody {
	if apiErr == nil {
		apiErr = model.NewInternalError()
	}
	return ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	}
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// ボディはヘッダー送信前に組み立てるため、途中で切れたレスポンスにはならない。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	body, err := json.Marshal(NewErrorResponseBody(apiErr))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	body = append(body, '\n')

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(statusCode)
	w.Write(body)
}

// WriteInternalServerError は内部エラーのレスポンスを書き込む。詳細は呼び出し側でログに残す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, nil)
}

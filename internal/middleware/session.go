// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/gamevault/internal/model"
)

const (
	// UserCookieName は操作ユーザーIDを保持するCookie名。
	UserCookieName = "gv_user"
	// UserHeaderName は操作ユーザーIDを指定するヘッダー名。Cookieより優先する。
	UserHeaderName = "X-User-ID"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// UserFinder は操作ユーザーの存在確認に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// NewSessionMiddleware は操作ユーザーを決定してリクエストコンテキストに注入するミドルウェアを返す。
// X-User-ID ヘッダー、gv_user Cookie、defaultUserID の順に採用する。
// 存在しないユーザーの場合は401 Unauthorizedを返す。
func NewSessionMiddleware(users UserFinder, defaultUserID string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := actingUserID(r, defaultUserID)
			if userID == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError(userID))
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				slog.Error("failed to find acting user",
					slog.String("user_id", userID),
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if user == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError(userID))
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actingUserID(r *http.Request, defaultUserID string) string {
	if v := strings.TrimSpace(r.Header.Get(UserHeaderName)); v != "" {
		return v
	}
	if c, err := r.Cookie(UserCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value)
	}
	return defaultUserID
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

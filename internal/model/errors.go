// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: session, validation, collection, metadata, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeItemNotFound        = "ITEM_NOT_FOUND"
	ErrCodeCollectionNotFound  = "COLLECTION_NOT_FOUND"
	ErrCodeWishlistNotFound    = "WISHLIST_ITEM_NOT_FOUND"
	ErrCodeReservedCollection  = "RESERVED_COLLECTION"
	ErrCodeInvalidFilter       = "INVALID_FILTER"
	ErrCodeInvalidSort         = "INVALID_SORT"
	ErrCodeInvalidRating       = "INVALID_RATING"
	ErrCodeInvalidPlaytime     = "INVALID_PLAYTIME"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeInvalidURL          = "INVALID_URL"
	ErrCodeMetadataUnavailable = "METADATA_UNAVAILABLE"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("ユーザーが見つかりません: %s", userID),
		Category: "session",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewItemNotFoundError はゲーム・本体が見つからない場合のエラーを生成する。
func NewItemNotFoundError(itemID string) *APIError {
	return &APIError{
		Code:     ErrCodeItemNotFound,
		Message:  fmt.Sprintf("指定されたアイテムが見つかりません: %s", itemID),
		Category: "collection",
		Action:   "アイテムIDを確認してください。",
	}
}

// NewCollectionNotFoundError はカスタムコレクションが見つからない場合のエラーを生成する。
func NewCollectionNotFoundError(collectionID string) *APIError {
	return &APIError{
		Code:     ErrCodeCollectionNotFound,
		Message:  fmt.Sprintf("指定されたコレクションが見つかりません: %s", collectionID),
		Category: "collection",
		Action:   "コレクションIDを確認してください。",
	}
}

// NewWishlistItemNotFoundError はウィッシュリスト項目が見つからない場合のエラーを生成する。
func NewWishlistItemNotFoundError(itemID string) *APIError {
	return &APIError{
		Code:     ErrCodeWishlistNotFound,
		Message:  fmt.Sprintf("指定されたウィッシュリスト項目が見つかりません: %s", itemID),
		Category: "collection",
		Action:   "ウィッシュリストを再読み込みしてください。",
	}
}

// NewReservedCollectionError は予約済みコレクション（all）を操作しようとした場合のエラーを生成する。
func NewReservedCollectionError() *APIError {
	return &APIError{
		Code:     ErrCodeReservedCollection,
		Message:  fmt.Sprintf("コレクション %q は削除できません。", AllCollectionID),
		Category: "collection",
		Action:   "作成したカスタムコレクションのみ削除できます。",
	}
}

// NewInvalidFilterError は無効なフィルタエラーを生成する。
func NewInvalidFilterError(name, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("無効なフィルタです: %s=%s", name, value),
		Category: "validation",
		Action:   "フィルタの値を確認してください。",
	}
}

// NewInvalidSortError は無効な並び順エラーを生成する。
func NewInvalidSortError(sort string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSort,
		Message:  fmt.Sprintf("無効な並び順です: %s", sort),
		Category: "validation",
		Action:   "title、releaseDate、platform、condition、price-low、price-high のいずれかを指定してください。",
	}
}

// NewInvalidRatingError は評価値が範囲外の場合のエラーを生成する。
func NewInvalidRatingError(rating int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRating,
		Message:  fmt.Sprintf("無効な評価です: %d", rating),
		Category: "validation",
		Action:   fmt.Sprintf("評価は%dから%dの整数で指定してください。", MinRating, MaxRating),
	}
}

// NewInvalidPlaytimeError はプレイ時間が負の場合のエラーを生成する。
func NewInvalidPlaytimeError(hours float64) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPlaytime,
		Message:  fmt.Sprintf("無効なプレイ時間です: %.1f", hours),
		Category: "validation",
		Action:   "プレイ時間は0以上の時間数で指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディ等が不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidURLError は画像URLが不正またはブロック対象の場合のエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "公開されている http:// または https:// の画像URLを指定してください。",
	}
}

// NewMetadataUnavailableError はメタデータサービスが利用できない場合のエラーを生成する。
func NewMetadataUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeMetadataUnavailable,
		Message:  "ゲーム情報サービスを利用できません。",
		Category: "metadata",
		Action:   "TWITCH_CLIENT_SECRET を設定するか、しばらく待ってから再度お試しください。",
	}
}

// NewUnauthorizedError は操作ユーザーを特定できない場合のエラーを生成する。
func NewUnauthorizedError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  fmt.Sprintf("操作ユーザーを特定できません: %s", userID),
		Category: "session",
		Action:   "X-User-ID ヘッダーまたは gv_user Cookie に存在するユーザーIDを指定してください。",
	}
}

// NewInternalError は内部エラーの利用者向け表現を生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

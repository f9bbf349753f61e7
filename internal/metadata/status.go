package metadata

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusClass はゲーム情報APIのHTTPステータスコードの分類。
type StatusClass int

const (
	// StatusOK は成功（200）。
	StatusOK StatusClass = iota
	// StatusReauth はトークンの再取得が必要なステータス（401）。
	StatusReauth
	// StatusBackoff は時間をおいて再試行すべきステータス（429/5xx）。
	StatusBackoff
	// StatusFail はそれ以外の失敗。
	StatusFail
)

// ClassifyStatus はHTTPステータスコードを分類する。
func ClassifyStatus(statusCode int) StatusClass {
	switch {
	case statusCode == http.StatusOK:
		return StatusOK
	case statusCode == http.StatusUnauthorized:
		return StatusReauth
	case statusCode == http.StatusTooManyRequests:
		return StatusBackoff
	case statusCode >= 500:
		return StatusBackoff
	default:
		return StatusFail
	}
}

// ErrNoCredentials はクライアントシークレットが未設定でトークンを取得できないことを示す。
// 呼び出し元は「ゲーム情報が利用できない」として扱い、致命的エラーにはしない。
var ErrNoCredentials = errors.New("metadata: client secret is not configured")

// StatusError はゲーム情報APIが200以外を返したことを示す。
type StatusError struct {
	StatusCode int
	Class      StatusClass
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ゲーム情報APIがステータス %d を返しました", e.StatusCode)
}

// IsBackoff はエラーが一時的な過負荷（429/5xx）によるものかを判定する。
func IsBackoff(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Class == StatusBackoff
}

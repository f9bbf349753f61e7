package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer は自由入力テキスト（メモ、コレクション名、ウィッシュリストのタイトルなど）から
// マークアップを除去する。表示側はプレーンテキストとして扱うため、タグは一切残さない。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer は全タグを除去するポリシーで TextSanitizer を生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// StripTags はタグを除去し、エスケープされた文字を元に戻して前後の空白を取り除く。
// script・style 要素は中身ごと除去される。
//
//	"<b>Zelda</b> &amp; Link" → "Zelda & Link"
func (s *TextSanitizer) StripTags(v string) string {
	if v == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

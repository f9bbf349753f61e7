package collection

import (
	"slices"
	"strings"

	"github.com/hitoshi/gamevault/internal/model"
)

// maxTagSuggestions はタグ候補の最大件数。
const maxTagSuggestions = 5

// AddTag はタグを小文字・前後空白除去で正規化して追加する。
// 空のタグや既存のタグは追加せず、false を返す。
func AddTag(tags []string, tag string) ([]string, bool) {
	normalized := model.NormalizeTag(tag)
	if normalized == "" || slices.Contains(tags, normalized) {
		return tags, false
	}
	out := make([]string, 0, len(tags)+1)
	out = append(out, tags...)
	return append(out, normalized), true
}

// RemoveTag はタグを取り除く。存在しなかった場合は false を返す。
func RemoveTag(tags []string, tag string) ([]string, bool) {
	normalized := model.NormalizeTag(tag)
	idx := slices.Index(tags, normalized)
	if idx < 0 {
		return tags, false
	}
	out := make([]string, 0, len(tags)-1)
	out = append(out, tags[:idx]...)
	return append(out, tags[idx+1:]...), true
}

// TagSuggestions は入力を部分一致（大文字小文字無視）で含むタグ候補を返す。
// current に含まれるタグは除外し、最大5件とする。入力が空白のみなら候補なし。
func TagSuggestions(input string, all, current []string) []string {
	term := strings.ToLower(strings.TrimSpace(input))
	if term == "" {
		return []string{}
	}

	out := []string{}
	for _, tag := range all {
		if !strings.Contains(strings.ToLower(tag), term) || slices.Contains(current, tag) {
			continue
		}
		out = append(out, tag)
		if len(out) == maxTagSuggestions {
			break
		}
	}
	return out
}

// AllTags はゲーム群の全タグを初出順・重複なしで返す。
func AllTags(games []model.Game) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range games {
		for _, t := range g.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

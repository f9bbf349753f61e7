package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hitoshi/gamevault/internal/model"
)

// ItemKind はマーケットプレイス出品の種別。
type ItemKind string

const (
	KindGame    ItemKind = "game"
	KindConsole ItemKind = "console"
)

// Owner は出品者の要約。
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Listing はマーケットプレイスに表示する出品。
// 本体はタイトル・プラットフォームとも本体名に正規化される。
type Listing struct {
	Kind        ItemKind        `json:"itemType"`
	ItemID      string          `json:"id"`
	Title       string          `json:"title"`
	Platform    string          `json:"console"`
	ReleaseDate string          `json:"releaseDate,omitempty"`
	Condition   model.Condition `json:"condition"`
	Image       string          `json:"image,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	ForSale     bool            `json:"forSale"`
	ForTrade    bool            `json:"forTrade"`
	Price       *float64        `json:"price"`
	Owner       Owner           `json:"owner"`
}

// BuildListings は全ユーザーのコレクションから販売中または交換可能なアイテムを集める。
// 並びはユーザー順、ゲーム→本体の順。
func BuildListings(users []model.User) []Listing {
	out := []Listing{}
	for _, u := range users {
		owner := Owner{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
		for _, g := range u.Games {
			if !g.ForSale && !g.ForTrade {
				continue
			}
			out = append(out, Listing{
				Kind:        KindGame,
				ItemID:      g.ID,
				Title:       g.Title,
				Platform:    g.Platform,
				ReleaseDate: g.ReleaseDate,
				Condition:   g.Condition,
				Image:       g.CoverArt,
				Notes:       g.Notes,
				ForSale:     g.ForSale,
				ForTrade:    g.ForTrade,
				Price:       clonePrice(g.Price),
				Owner:       owner,
			})
		}
		for _, c := range u.Consoles {
			if !c.ForSale && !c.ForTrade {
				continue
			}
			out = append(out, Listing{
				Kind:        KindConsole,
				ItemID:      c.ID,
				Title:       c.Name,
				Platform:    c.Name,
				ReleaseDate: c.ReleaseDate,
				Condition:   c.Condition,
				Image:       c.Image,
				Notes:       c.Notes,
				ForSale:     c.ForSale,
				ForTrade:    c.ForTrade,
				Price:       clonePrice(c.Price),
				Owner:       owner,
			})
		}
	}
	return out
}

// ListingType はマーケットプレイスの種別フィルタ。
type ListingType string

const (
	ListingAll   ListingType = "all"
	ListingSale  ListingType = "sale"
	ListingTrade ListingType = "trade"
)

// MarketSort はマーケットプレイスの並び順。
type MarketSort string

const (
	MarketRecent    MarketSort = "recent"
	MarketPriceLow  MarketSort = "price-low"
	MarketPriceHigh MarketSort = "price-high"
	MarketTitle     MarketSort = "title"
)

// MarketplaceParams はマーケットプレイスの絞り込み・並び替え条件。
type MarketplaceParams struct {
	Type     ListingType
	Platform string
	Search   string
	Sort     MarketSort
}

// Validate は列挙値を検証する。
func (p MarketplaceParams) Validate() error {
	switch p.Type {
	case "", ListingAll, ListingSale, ListingTrade:
	default:
		return model.NewInvalidFilterError("type", string(p.Type))
	}
	switch p.Sort {
	case "", MarketRecent, MarketPriceLow, MarketPriceHigh, MarketTitle:
	default:
		return model.NewInvalidSortError(string(p.Sort))
	}
	return nil
}

// FilterListings は種別 → プラットフォーム → テキスト検索 → 並び替えの順で適用する。
// recentは元の順序を保つ。
func FilterListings(listings []Listing, p MarketplaceParams) []Listing {
	term := strings.ToLower(strings.TrimSpace(p.Search))

	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		switch p.Type {
		case ListingSale:
			if !l.ForSale {
				continue
			}
		case ListingTrade:
			if !l.ForTrade {
				continue
			}
		}
		if !isAll(p.Platform) && l.Platform != p.Platform {
			continue
		}
		if term != "" && !containsAny(term, l.Title, l.Platform) {
			continue
		}
		out = append(out, l)
	}

	switch p.Sort {
	case MarketPriceLow:
		slices.SortStableFunc(out, func(a, b Listing) int {
			return cmp.Compare(priceOrZero(a.Price), priceOrZero(b.Price))
		})
	case MarketPriceHigh:
		slices.SortStableFunc(out, func(a, b Listing) int {
			return cmp.Compare(priceOrZero(b.Price), priceOrZero(a.Price))
		})
	case MarketTitle:
		col := newTitleCollator()
		slices.SortStableFunc(out, func(a, b Listing) int {
			return col.CompareString(a.Title, b.Title)
		})
	}
	return out
}

// MarketStats はマーケットプレイス全体の件数。
type MarketStats struct {
	Total    int `json:"total"`
	ForSale  int `json:"forSale"`
	ForTrade int `json:"forTrade"`
	Games    int `json:"games"`
	Consoles int `json:"consoles"`
}

// MarketplaceStats は出品の件数を集計する。
func MarketplaceStats(listings []Listing) MarketStats {
	st := MarketStats{Total: len(listings)}
	for _, l := range listings {
		if l.ForSale {
			st.ForSale++
		}
		if l.ForTrade {
			st.ForTrade++
		}
		switch l.Kind {
		case KindGame:
			st.Games++
		case KindConsole:
			st.Consoles++
		}
	}
	return st
}

// ListingPlatforms は出品に含まれるプラットフォームを重複なく昇順で返す。
func ListingPlatforms(listings []Listing) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, l := range listings {
		if l.Platform == "" {
			continue
		}
		if _, ok := seen[l.Platform]; ok {
			continue
		}
		seen[l.Platform] = struct{}{}
		out = append(out, l.Platform)
	}
	slices.Sort(out)
	return out
}

// FindListing は出品者・種別・アイテムIDで出品を探す。
func FindListing(listings []Listing, ownerID string, kind ItemKind, itemID string) (Listing, bool) {
	for _, l := range listings {
		if l.Owner.ID == ownerID && l.Kind == kind && l.ItemID == itemID {
			return l, true
		}
	}
	return Listing{}, false
}

func clonePrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

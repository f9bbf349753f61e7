package model

import "time"

// AllCollectionID は全アイテムを表す予約済みカスタムコレクションID。削除できない。
const AllCollectionID = "all"

// User はコレクションを所有するユーザーを表す。
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Bio        string    `json:"bio"`
	Avatar     string    `json:"avatar,omitempty"`
	Games      []Game    `json:"games"`
	Consoles   []Console `json:"consoles"`
	Likes      int       `json:"likes"`
	JoinedDate string    `json:"joinedDate"`
}

// Joined は登録日をパースして返す。
func (u User) Joined() (time.Time, bool) {
	return ParseDate(u.JoinedDate)
}

// Clone はゲーム・本体を含めたディープコピーを返す。
func (u User) Clone() User {
	c := u
	c.Games = CloneGames(u.Games)
	c.Consoles = CloneConsoles(u.Consoles)
	return c
}

// WishlistItem はウィッシュリストの1項目を表す。
type WishlistItem struct {
	ID        string `json:"id"`
	GameTitle string `json:"gameTitle"`
	Platform  string `json:"console"`
	AddedDate string `json:"addedDate"`
}

// CustomCollection はユーザー定義のコレクション（棚）を表す。
type CustomCollection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// DefaultCollectionIcon と DefaultCollectionColor はカスタムコレクション作成時の既定値。
const (
	DefaultCollectionIcon  = "📦"
	DefaultCollectionColor = "#3b82f6"
)

// Preferences はユーザーごとの設定・ソーシャル情報を表す。
type Preferences struct {
	Wishlist          []WishlistItem     `json:"wishlist"`
	Following         []string           `json:"following"`
	Followers         []string           `json:"followers"`
	CollectionValue   *float64           `json:"collectionValue,omitempty"`
	PersonalQuote     string             `json:"personalQuote,omitempty"`
	CustomCollections []CustomCollection `json:"customCollections"`
}

// Clone はディープコピーを返す。
func (p Preferences) Clone() Preferences {
	c := p
	c.CollectionValue = clonePtr(p.CollectionValue)
	c.Following = cloneStrings(p.Following)
	c.Followers = cloneStrings(p.Followers)
	if p.Wishlist != nil {
		c.Wishlist = make([]WishlistItem, len(p.Wishlist))
		copy(c.Wishlist, p.Wishlist)
	}
	if p.CustomCollections != nil {
		c.CustomCollections = make([]CustomCollection, len(p.CustomCollections))
		copy(c.CustomCollections, p.CustomCollections)
	}
	return c
}

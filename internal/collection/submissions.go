package collection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/gamevault/internal/model"
	"github.com/hitoshi/gamevault/internal/view"
)

// maxPhotos は1つのゲームに添付できる写真の最大数。
const maxPhotos = 10

// Acknowledgement は保存や実行を伴わない操作の受付結果。
type Acknowledgement struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// StatusSimulated は実際の処理を行わず記録のみ行ったことを示す。
const StatusSimulated = "simulated"

// TradeRequest はマーケットプレイスの出品に対するトレード申込み。
type TradeRequest struct {
	OwnerID      string        `json:"ownerId"`
	ItemType     view.ItemKind `json:"itemType"`
	ItemID       string        `json:"itemId"`
	OfferedItems []string      `json:"offeredItems"`
	Message      string        `json:"message"`
}

// AddGame は追加するゲームを検証・正規化して受け付ける。コレクションには追加しない。
func (s *Service) AddGame(ctx context.Context, userID string, in model.Game) (*model.Game, error) {
	if _, err := s.State(ctx, userID); err != nil {
		return nil, err
	}

	g := in.Clone()
	g.Title = strings.TrimSpace(s.stripTags(g.Title))
	g.Platform = strings.TrimSpace(s.stripTags(g.Platform))
	g.Notes = strings.TrimSpace(s.stripTags(g.Notes))
	if g.Title == "" {
		return nil, model.NewInvalidRequestError("タイトルは必須です")
	}
	if g.Platform == "" {
		return nil, model.NewInvalidRequestError("プラットフォームは必須です")
	}
	if g.Condition == "" {
		g.Condition = model.ConditionExcellent
	}
	if !g.Condition.Valid() {
		return nil, model.NewInvalidFilterError("condition", string(g.Condition))
	}
	if g.ReleaseDate != "" {
		if _, ok := g.Released(); !ok {
			return nil, model.NewInvalidRequestError("リリース日は YYYY-MM-DD 形式で指定してください")
		}
	}
	if err := model.ValidateRating(g.Rating); err != nil {
		return nil, err
	}
	if err := model.ValidatePlaytime(g.Playtime); err != nil {
		return nil, err
	}
	if err := validatePrice(g.Price); err != nil {
		return nil, err
	}
	if err := validatePrice(g.PurchasePrice); err != nil {
		return nil, err
	}
	if len(g.Photos) > maxPhotos {
		return nil, model.NewInvalidRequestError(fmt.Sprintf("写真は最大%d枚までです", maxPhotos))
	}
	if err := s.validateURLs(append([]string{g.CoverArt}, g.Photos...)...); err != nil {
		return nil, err
	}

	var tags []string
	for _, t := range g.Tags {
		tags, _ = AddTag(tags, t)
	}
	g.Tags = tags
	if !g.ForSale {
		g.Price = nil
	}
	g.ID = "g-" + uuid.NewString()

	s.logger.Info("ゲームの追加を受け付けました",
		slog.String("user_id", userID),
		slog.String("game_id", g.ID),
		slog.String("title", g.Title),
		slog.String("platform", g.Platform),
	)
	return &g, nil
}

// AddConsole は追加する本体を検証・正規化して受け付ける。コレクションには追加しない。
func (s *Service) AddConsole(ctx context.Context, userID string, in model.Console) (*model.Console, error) {
	if _, err := s.State(ctx, userID); err != nil {
		return nil, err
	}

	c := in.Clone()
	c.Name = strings.TrimSpace(s.stripTags(c.Name))
	c.Manufacturer = strings.TrimSpace(s.stripTags(c.Manufacturer))
	c.Notes = strings.TrimSpace(s.stripTags(c.Notes))
	if c.Name == "" {
		return nil, model.NewInvalidRequestError("本体名は必須です")
	}
	if c.Manufacturer == "" {
		return nil, model.NewInvalidRequestError("メーカーは必須です")
	}
	if c.Condition == "" {
		c.Condition = model.ConditionExcellent
	}
	if !c.Condition.Valid() {
		return nil, model.NewInvalidFilterError("condition", string(c.Condition))
	}
	if c.ReleaseDate != "" {
		if _, ok := c.Released(); !ok {
			return nil, model.NewInvalidRequestError("リリース日は YYYY-MM-DD 形式で指定してください")
		}
	}
	if err := validatePrice(c.Price); err != nil {
		return nil, err
	}
	if err := s.validateURLs(c.Image); err != nil {
		return nil, err
	}
	if !c.ForSale {
		c.Price = nil
	}
	c.ID = "c-" + uuid.NewString()

	s.logger.Info("本体の追加を受け付けました",
		slog.String("user_id", userID),
		slog.String("console_id", c.ID),
		slog.String("name", c.Name),
	)
	return &c, nil
}

// SimulateTradeRequest はトレード申込みを検証して記録のみ行う。実際のトレードは実行しない。
func (s *Service) SimulateTradeRequest(ctx context.Context, userID string, req TradeRequest) (*Acknowledgement, error) {
	if req.OwnerID == userID {
		return nil, model.NewInvalidRequestError("自分の出品にはトレードを申し込めません")
	}
	if len(req.OfferedItems) == 0 {
		return nil, model.NewInvalidRequestError("提示するアイテムを1つ以上選択してください")
	}

	listing, err := s.findListing(ctx, req.OwnerID, req.ItemType, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !listing.ForTrade {
		return nil, model.NewInvalidRequestError("このアイテムはトレード対象ではありません")
	}

	// 提示アイテムは操作ユーザーのコレクションに含まれていること
	state, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range req.OfferedItems {
		if findGame(state.Games, id) == nil && findConsole(state.Consoles, id) == nil {
			return nil, model.NewItemNotFoundError(id)
		}
	}

	ack := &Acknowledgement{
		ID:         uuid.NewString(),
		Status:     StatusSimulated,
		Message:    "Trade request sent! In a real app, this would notify the owner.",
		ReceivedAt: time.Now(),
	}
	s.logger.Info("トレード申込みを受け付けました",
		slog.String("request_id", ack.ID),
		slog.String("user_id", userID),
		slog.String("owner_id", req.OwnerID),
		slog.String("item_type", string(req.ItemType)),
		slog.String("item_id", req.ItemID),
		slog.Any("offered_items", req.OfferedItems),
		slog.String("message", s.stripTags(req.Message)),
	)
	return ack, nil
}

// SimulatePurchase は購入を検証して記録のみ行う。決済は行わない。
// ownerID が空の場合は、操作ユーザー以外で該当アイテムを販売中の最初の出品を対象にする。
func (s *Service) SimulatePurchase(ctx context.Context, userID, ownerID string, kind view.ItemKind, itemID string) (*Acknowledgement, error) {
	if kind != view.KindGame && kind != view.KindConsole {
		return nil, model.NewInvalidFilterError("itemType", string(kind))
	}

	var (
		listing view.Listing
		err     error
	)
	if ownerID != "" {
		if ownerID == userID {
			return nil, model.NewInvalidRequestError("自分の出品は購入できません")
		}
		listing, err = s.findListing(ctx, ownerID, kind, itemID)
		if err != nil {
			return nil, err
		}
	} else {
		listing, err = s.firstForSale(ctx, userID, kind, itemID)
		if err != nil {
			return nil, err
		}
	}
	if !listing.ForSale {
		return nil, model.NewInvalidRequestError("このアイテムは販売されていません")
	}

	price := 0.0
	if listing.Price != nil {
		price = *listing.Price
	}
	ack := &Acknowledgement{
		ID:         uuid.NewString(),
		Status:     StatusSimulated,
		Message:    fmt.Sprintf("In a real app, this would process the purchase of %s for $%.2f", listing.Title, price),
		ReceivedAt: time.Now(),
	}
	s.logger.Info("購入を受け付けました",
		slog.String("request_id", ack.ID),
		slog.String("user_id", userID),
		slog.String("owner_id", listing.Owner.ID),
		slog.String("item_type", string(kind)),
		slog.String("item_id", itemID),
		slog.Float64("price", price),
	)
	return ack, nil
}

func (s *Service) findListing(ctx context.Context, ownerID string, kind view.ItemKind, itemID string) (view.Listing, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return view.Listing{}, err
	}
	listing, ok := view.FindListing(view.BuildListings(users), ownerID, kind, itemID)
	if !ok {
		return view.Listing{}, model.NewItemNotFoundError(itemID)
	}
	return listing, nil
}

func (s *Service) firstForSale(ctx context.Context, userID string, kind view.ItemKind, itemID string) (view.Listing, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return view.Listing{}, err
	}
	for _, l := range view.BuildListings(users) {
		if l.Owner.ID != userID && l.Kind == kind && l.ItemID == itemID && l.ForSale {
			return l, nil
		}
	}
	return view.Listing{}, model.NewItemNotFoundError(itemID)
}

func (s *Service) validateURLs(urls ...string) error {
	if s.urls == nil {
		return nil
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := s.urls.ValidateURL(u); err != nil {
			return model.NewInvalidURLError(err.Error())
		}
	}
	return nil
}

func validatePrice(p *float64) error {
	if p != nil && *p < 0 {
		return model.NewInvalidRequestError("価格は0以上で指定してください")
	}
	return nil
}

package model

import "time"

// ActivityType はアクティビティの種別を表す。
type ActivityType string

const (
	ActivityAddedGame      ActivityType = "added_game"
	ActivityAddedConsole   ActivityType = "added_console"
	ActivityListedSale     ActivityType = "listed_sale"
	ActivityListedTrade    ActivityType = "listed_trade"
	ActivityLikedProfile   ActivityType = "liked_profile"
	ActivityCompletedTrade ActivityType = "completed_trade"
	ActivityFoundRare      ActivityType = "found_rare"
)

// ActivityTypes は全アクティビティ種別。
var ActivityTypes = []ActivityType{
	ActivityAddedGame, ActivityAddedConsole, ActivityListedSale, ActivityListedTrade,
	ActivityLikedProfile, ActivityCompletedTrade, ActivityFoundRare,
}

// ActivityEvent はアクティビティフィードの1イベントを表す。
type ActivityEvent struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Username  string       `json:"username"`
	Type      ActivityType `json:"type"`
	Item      string       `json:"item,omitempty"`
	Target    string       `json:"target,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

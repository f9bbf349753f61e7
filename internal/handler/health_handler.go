package handler

import (
	"context"
	"net/http"
)

// StoreChecker はカタログストアの応答を確認する。*repository.MemoryUserRepo が満たす。
type StoreChecker interface {
	Ping(ctx context.Context) error
}

// MetadataStatus は外部ゲーム情報サービスの資格情報が設定されているかを返す。
type MetadataStatus interface {
	Enabled() bool
}

type healthResponse struct {
	Status   string `json:"status"`
	Metadata string `json:"metadata"`
}

// NewHealthHandler は /health のハンドラーを返す。
// ストアが応答しない場合のみ503とする。メタデータサービスの資格情報がなくても200で disabled と報告する。
func NewHealthHandler(store StoreChecker, meta MetadataStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Metadata: "unknown"})
				return
			}
		}
		metaStatus := "disabled"
		if meta != nil && meta.Enabled() {
			metaStatus = "enabled"
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Metadata: metaStatus})
	}
}

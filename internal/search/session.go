package search

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

// 受信メッセージの種別
const (
	MessageInput   = "input"
	MessageSelect  = "select"
	MessageDismiss = "dismiss"
	MessageFocus   = "focus"
)

// 送信メッセージの種別
const (
	MessageState    = "state"
	MessageSelected = "selected"
	MessageEnriched = "enriched"
	MessageError    = "error"
)

// writeTimeout は1メッセージの送信にかける最大時間。
const writeTimeout = 5 * time.Second

// InboundMessage はクライアントから受信するメッセージ。
type InboundMessage struct {
	Type  string `json:"type"`
	Query string `json:"query,omitempty"`
	Index int    `json:"index,omitempty"`
}

// OutboundMessage はクライアントへ送信するメッセージ。
type OutboundMessage struct {
	Type       string      `json:"type"`
	State      *Snapshot   `json:"state,omitempty"`
	Selection  *Selection  `json:"selection,omitempty"`
	Enrichment *Enrichment `json:"enrichment,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// HandlerOptions は検索ソケットの設定。
type HandlerOptions struct {
	Debounce time.Duration
	Limit    int
	// AllowedOrigin はブラウザからの接続で許可するOrigin。Originヘッダーのない接続は許可する。
	AllowedOrigin string
}

// NewHandler は検索ボックス用のWebSocketハンドラーを生成する。
// 接続ごとに専用の Coordinator を持ち、接続終了時に閉じる。
func NewHandler(backend Backend, logger *slog.Logger, opts HandlerOptions) http.Handler {
	allowed := strings.TrimRight(opts.AllowedOrigin, "/")
	return websocket.Server{
		Handshake: func(cfg *websocket.Config, r *http.Request) error {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return nil
			}
			if allowed != "" && strings.TrimRight(origin, "/") != allowed {
				logger.Warn("許可されていないOriginからの接続を拒否しました",
					slog.String("origin", origin),
				)
				return fmt.Errorf("origin not allowed: %s", origin)
			}
			return nil
		},
		Handler: func(ws *websocket.Conn) {
			serveSession(ws, backend, logger, opts)
		},
	}
}

// session は1接続分の送信を直列化する。
type session struct {
	conn   *websocket.Conn
	logger *slog.Logger
	sendMu sync.Mutex
}

func (s *session) send(msg OutboundMessage) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := websocket.JSON.Send(s.conn, msg); err != nil {
		s.logger.Debug("検索ソケットへの送信に失敗しました",
			slog.String("type", msg.Type),
			slog.String("error", err.Error()),
		)
	}
}

func serveSession(ws *websocket.Conn, backend Backend, logger *slog.Logger, opts HandlerOptions) {
	defer ws.Close()

	s := &session{conn: ws, logger: logger}

	// 状態通知は最新のスナップショットだけを送ればよいため、1件分のシグナルにまとめる
	changed := make(chan struct{}, 1)
	coord := NewCoordinator(backend, logger, Options{
		Debounce: opts.Debounce,
		Limit:    opts.Limit,
		OnChange: func(Snapshot) {
			select {
			case changed <- struct{}{}:
			default:
			}
		},
		OnEnriched: func(e Enrichment) {
			s.send(OutboundMessage{Type: MessageEnriched, Enrichment: &e})
		},
	})
	defer coord.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-changed:
				snap := coord.Snapshot()
				s.send(OutboundMessage{Type: MessageState, State: &snap})
			}
		}
	}()

	logger.Debug("検索ソケットを開始しました")

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(ws, &msg); err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Debug("検索ソケットの受信を終了しました", slog.String("error", err.Error()))
			}
			return
		}

		switch msg.Type {
		case MessageInput:
			coord.Input(msg.Query)
		case MessageSelect:
			sel, ok := coord.Select(msg.Index)
			if !ok {
				s.send(OutboundMessage{Type: MessageError, Message: "選択された結果が存在しません"})
				continue
			}
			s.send(OutboundMessage{Type: MessageSelected, Selection: &sel})
		case MessageDismiss:
			coord.Dismiss()
		case MessageFocus:
			coord.Focus()
		default:
			s.send(OutboundMessage{Type: MessageError, Message: "不明なメッセージ種別です: " + msg.Type})
		}
	}
}

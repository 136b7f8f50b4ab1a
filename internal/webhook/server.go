package webhook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/nao1215/paywebhook/internal/view"
	webhookdb "github.com/nao1215/paywebhook/internal/webhook/db"
	"github.com/nao1215/paywebhook/pkg/config"
	"github.com/nao1215/paywebhook/pkg/event"
	"github.com/nao1215/paywebhook/pkg/gateway"
	"github.com/nao1215/paywebhook/pkg/httpclient"
	"github.com/nao1215/paywebhook/pkg/metrics"
	"github.com/nao1215/paywebhook/pkg/middleware"
)

// gatewayRetryStep は注文照会を再試行する際の待機時間の増分。
const gatewayRetryStep = 200 * time.Millisecond

// Server はWebhook通知サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *webhookdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// secret はゲートウェイとの共有シークレット。空の場合は受信を無効にする。
	secret string
	// eventStoreClient はEvent Storeへの通信クライアント。未設定の場合はnil。
	eventStoreClient *httpclient.Client
	// gateway は受信した注文を照会する決済ゲートウェイのクライアント。照会しない場合はnil。
	gateway *gateway.Client
	// listView は /webhooks ページを構築する通知一覧ビュー。
	listView *view.View
	// now は受信時刻の取得に使用する。
	now func() time.Time
}

// NewServer は新しいWebhook通知サーバーを生成する。
// SQLiteデータベースの接続とマイグレーションを行う。
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := newServer(router, cfg.Port, sqlDB, cfg.WebhookSecret)
	if cfg.EventStoreURL != "" {
		s.eventStoreClient = httpclient.New(cfg.EventStoreURL, httpclient.WithTimeout(cfg.EventStoreTimeout))
	}
	if cfg.Gateway.VerifyOrders {
		s.gateway = gateway.New(gateway.Config{
			Host:       cfg.Gateway.Host,
			APIVersion: cfg.Gateway.APIVersion,
			MerchantID: cfg.Gateway.MerchantID,
			Password:   cfg.Gateway.Password,
		},
			httpclient.WithTimeout(cfg.Gateway.Timeout),
			httpclient.WithRetry(cfg.Gateway.Retries, gatewayRetryStep),
		)
		log.Printf("[Webhook] 受信した注文をゲートウェイ（%s）に照会します", cfg.Gateway.Host)
	}
	if cfg.WebhookSecret == "" {
		log.Printf("[Webhook] WEBHOOK_SECRET が未設定のため、Webhookの受信は無効です")
	}
	s.setupRoutes(cfg.JWTSecret, cfg.AllowedOrigins)

	return s, nil
}

// newServer はルーティング設定前のServerを組み立てる。
func newServer(router *gin.Engine, port string, sqlDB *sql.DB, secret string) *Server {
	s := &Server{
		router:  router,
		port:    port,
		queries: webhookdb.New(sqlDB),
		db:      sqlDB,
		secret:  secret,
		now:     time.Now,
	}
	s.listView = view.New(view.SourceFunc(s.listNotifications))
	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// Handler はルーティング設定済みのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はルーティングを設定する。
// jwtSecretが空の場合、管理APIは登録しない。
func (s *Server) setupRoutes(jwtSecret string, allowedOrigins []string) {
	s.router.SetHTMLTemplate(view.Templates())

	// ゲートウェイからのWebhook受信
	s.router.POST("/process-webhook", s.handleProcessWebhook())
	// 通知一覧（JSON）
	s.router.GET("/list-webhook-notifications", middleware.CORS(allowedOrigins), s.handleList())
	s.router.OPTIONS("/list-webhook-notifications", middleware.CORS(allowedOrigins))
	// 通知一覧ページ
	s.router.GET("/webhooks", s.handlePage())

	if jwtSecret != "" {
		admin := s.router.Group("/api/v1/admin")
		admin.Use(middleware.JWTAuth(jwtSecret))
		{
			admin.GET("/webhook-notifications", s.handleCount())
			admin.GET("/webhook-notifications/:id", s.handleGet())
			admin.DELETE("/webhook-notifications", s.handlePurge())
		}
	}

	s.router.GET("/metrics", metrics.Handler())
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "webhook"})
	})
}

// notificationResponse は通知一覧の1件のJSONレスポンス構造。
// 通知一覧ビューが読むフィールド名に合わせる。
type notificationResponse struct {
	Timestamp     string `json:"timestamp"`
	OrderID       string `json:"orderId"`
	TransactionID string `json:"transactionId"`
	OrderStatus   string `json:"orderStatus"`
	Amount        string `json:"amount"`
}

func toNotificationResponses(rows []webhookdb.WebhookNotification) []notificationResponse {
	responses := make([]notificationResponse, 0, len(rows))
	for _, n := range rows {
		responses = append(responses, notificationResponse{
			Timestamp:     n.Timestamp,
			OrderID:       n.OrderID,
			TransactionID: n.TransactionID,
			OrderStatus:   n.OrderStatus,
			Amount:        n.Amount,
		})
	}
	return responses
}

// listNotifications は通知一覧ビューの取得元。ストアから受信順に読み出す。
func (s *Server) listNotifications(ctx context.Context, _ string) ([]view.Notification, error) {
	rows, err := s.queries.ListWebhookNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗: %w", err)
	}
	notifications := make([]view.Notification, 0, len(rows))
	for _, n := range rows {
		notifications = append(notifications, view.Notification{
			Timestamp:     view.Text(n.Timestamp),
			OrderID:       view.Text(n.OrderID),
			TransactionID: view.Text(n.TransactionID),
			OrderStatus:   view.Text(n.OrderStatus),
			Amount:        view.Text(n.Amount),
		})
	}
	return notifications, nil
}

// handleList は保存済みの通知を受信順のJSON配列で返すハンドラ。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.ListRequests.Inc()

		rows, err := s.queries.ListWebhookNotifications(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知一覧の取得に失敗しました"})
			log.Printf("通知一覧取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toNotificationResponses(rows))
	}
}

// handlePage は通知一覧ページを描画するハンドラ。
// リクエストごとに通知一覧ビューを1度読み込む。
func (s *Server) handlePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 取得エラーはLoadがログに記録し、エラー表示のページとして返す
		page, _ := s.listView.Load(c.Request.Context(), pageURL(c.Request))
		metrics.PageRenders.WithLabelValues(page.State()).Inc()
		c.HTML(http.StatusOK, view.PageTemplate, page)
	}
}

// storedNotificationResponse は管理APIが返す保存済み通知の詳細。
type storedNotificationResponse struct {
	ID string `json:"id"`
	notificationResponse
	CreatedAt time.Time `json:"createdAt"`
}

// handleCount は保存済みの通知件数を返すハンドラ。
func (s *Server) handleCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := s.queries.CountWebhookNotifications(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知件数の取得に失敗しました"})
			log.Printf("通知件数取得エラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// handleGet は受信時に払い出したIDで通知を1件返すハンドラ。
func (s *Server) handleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := s.queries.GetWebhookNotificationByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "通知が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の取得に失敗しました"})
			log.Printf("通知取得エラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, storedNotificationResponse{
			ID:                   n.ID,
			notificationResponse: toNotificationResponses([]webhookdb.WebhookNotification{n})[0],
			CreatedAt:            n.CreatedAt,
		})
	}
}

// handlePurge は保存済みの通知をすべて削除するハンドラ。
func (s *Server) handlePurge() gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := s.queries.DeleteAllWebhookNotifications(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の削除に失敗しました"})
			log.Printf("通知削除エラー: %v", err)
			return
		}

		s.publish(c.Request.Context(), "notification-store", event.AggregateTypeNotificationStore,
			event.TypeWebhookNotificationsPurged, event.WebhookNotificationsPurgedData{
				Deleted: deleted,
				UserID:  middleware.GetUserID(c),
			})

		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	}
}

// publish はイベントをEvent Storeに送信する。
// 送信に失敗してもログに記録するだけで、呼び出し元の処理は成功として扱う。
func (s *Server) publish(ctx context.Context, aggregateID string, aggregateType event.AggregateType, eventType event.Type, data any) {
	e, err := event.New(aggregateID, aggregateType, eventType, 1, data)
	if err != nil {
		log.Printf("[Webhook] %sイベントの生成に失敗: %v", eventType, err)
		return
	}
	log.Printf("[Webhook] %s aggregate=%s data=%s", e.EventType, e.AggregateID, e.Data)

	if s.eventStoreClient == nil {
		return
	}
	if err := s.eventStoreClient.PostJSON(ctx, "/api/v1/events", e.ToAppendRequest(), nil); err != nil {
		log.Printf("[Webhook] %sイベントの送信に失敗: %v", eventType, err)
	}
}

// pageURL はリクエストからブラウザが表示しているページのURLを組み立てる。
// リバースプロキシ配下ではX-Forwarded-Protoを優先する。
func pageURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	// 複数のプロキシを経由すると "https, http" のように連結される。先頭を使う
	if proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ","); strings.TrimSpace(proto) != "" {
		scheme = strings.ToLower(strings.TrimSpace(proto))
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// Package metrics はWebhookサービスのPrometheusメトリクスを定義する。
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook受信結果のラベル値。
const (
	ResultStored       = "stored"
	ResultUnauthorized = "unauthorized"
	ResultInvalid      = "invalid"
	ResultDisabled     = "disabled"
	ResultUnverified   = "unverified"
	ResultError        = "error"
)

var (
	// WebhooksReceived は受信したWebhook通知の数（結果別）。
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_notifications_received_total",
			Help: "受信したWebhook通知の総数",
		},
		[]string{"result"},
	)

	// ListRequests は通知一覧APIの呼び出し数。
	ListRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_notification_list_requests_total",
			Help: "通知一覧APIの呼び出し総数",
		},
	)

	// PageRenders は通知一覧ページの描画数（表示状態別: rows, empty, error）。
	PageRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_notification_page_renders_total",
			Help: "通知一覧ページの描画総数",
		},
		[]string{"state"},
	)
)

// Handler は /metrics エンドポイントのハンドラを返す。
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

package webhook

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	webhookdb "github.com/nao1215/paywebhook/internal/webhook/db"
	"github.com/nao1215/paywebhook/pkg/event"
	"github.com/nao1215/paywebhook/pkg/httpclient"
	"github.com/nao1215/paywebhook/pkg/metrics"
)

// headerNotificationSecret はゲートウェイが共有シークレットを送るヘッダー。
const headerNotificationSecret = "X-Notification-Secret"

// 受け付ける金額の範囲。指数と係数のビット長（約38桁）で制限する。
const (
	maxAmountExponent = 18
	maxAmountBits     = 126
)

// errUnknownOrder はゲートウェイに存在しない注文であることを表す。
var errUnknownOrder = errors.New("ゲートウェイに注文が存在しません")

// sanitizer は受信した値からマークアップを取り除く。
var sanitizer = bluemonday.StrictPolicy()

// webhookRequest はゲートウェイが送るWebhook通知のうち、保存対象のフィールド。
type webhookRequest struct {
	Order struct {
		// ID は注文ID。
		ID string `json:"id" binding:"required"`
		// Amount は注文金額。文字列・数値のどちらでも受け付ける。
		Amount decimal.NullDecimal `json:"amount"`
		// Status は注文ステータス（CAPTURED、FAILED など）。
		Status string `json:"status"`
	} `json:"order"`
	Transaction struct {
		// ID はトランザクションID。
		ID string `json:"id"`
	} `json:"transaction"`
	// TimeOfRecord はゲートウェイ側の記録日時。
	TimeOfRecord string `json:"timeOfRecord"`
}

// handleProcessWebhook はゲートウェイからのWebhook通知を検証して保存するハンドラ。
func (s *Server) handleProcessWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.secret == "" {
			metrics.WebhooksReceived.WithLabelValues(metrics.ResultDisabled).Inc()
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Webhookの受信は無効です"})
			return
		}

		given := c.GetHeader(headerNotificationSecret)
		if subtle.ConstantTimeCompare([]byte(given), []byte(s.secret)) != 1 {
			metrics.WebhooksReceived.WithLabelValues(metrics.ResultUnauthorized).Inc()
			log.Printf("[Webhook] シークレットが一致しない通知を拒否しました: remote=%s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "通知シークレットが不正です"})
			return
		}

		var req webhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.WebhooksReceived.WithLabelValues(metrics.ResultInvalid).Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		params := webhookdb.CreateWebhookNotificationParams{
			ID:            uuid.New().String(),
			Timestamp:     sanitize(req.TimeOfRecord),
			OrderID:       sanitize(req.Order.ID),
			TransactionID: sanitize(req.Transaction.ID),
			OrderStatus:   sanitize(req.Order.Status),
		}
		if params.OrderID == "" {
			metrics.WebhooksReceived.WithLabelValues(metrics.ResultInvalid).Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "注文IDが必要です"})
			return
		}
		if params.Timestamp == "" {
			params.Timestamp = s.now().UTC().Format(time.RFC3339)
		}
		if req.Order.Amount.Valid {
			if !amountInRange(req.Order.Amount.Decimal) {
				metrics.WebhooksReceived.WithLabelValues(metrics.ResultInvalid).Inc()
				c.JSON(http.StatusBadRequest, gin.H{"error": "金額が範囲外です"})
				return
			}
			params.Amount = formatAmount(req.Order.Amount.Decimal)
		}

		if s.gateway != nil {
			err := s.verifyOrder(c.Request.Context(), &params)
			if errors.Is(err, errUnknownOrder) {
				metrics.WebhooksReceived.WithLabelValues(metrics.ResultUnverified).Inc()
				log.Printf("[Webhook] ゲートウェイに存在しない注文の通知を拒否しました: order=%s", params.OrderID)
				c.JSON(http.StatusBadRequest, gin.H{"error": "注文を確認できません"})
				return
			}
			if err != nil {
				metrics.WebhooksReceived.WithLabelValues(metrics.ResultUnverified).Inc()
				log.Printf("[Webhook] 注文の照会に失敗: order=%s: %v", params.OrderID, err)
				c.JSON(http.StatusBadGateway, gin.H{"error": "ゲートウェイへの注文照会に失敗しました"})
				return
			}
		}

		if err := s.queries.CreateWebhookNotification(c.Request.Context(), params); err != nil {
			metrics.WebhooksReceived.WithLabelValues(metrics.ResultError).Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の保存に失敗しました"})
			log.Printf("通知保存エラー: %v", err)
			return
		}
		metrics.WebhooksReceived.WithLabelValues(metrics.ResultStored).Inc()

		s.publish(c.Request.Context(), "order-"+params.OrderID, event.AggregateTypeOrder,
			event.TypeWebhookNotificationReceived, event.WebhookNotificationReceivedData{
				NotificationID: params.ID,
				OrderID:        params.OrderID,
				TransactionID:  params.TransactionID,
				OrderStatus:    params.OrderStatus,
				Amount:         params.Amount,
			})

		c.JSON(http.StatusOK, gin.H{"id": params.ID})
	}
}

// verifyOrder はゲートウェイに注文を照会し、注文ステータスと金額をゲートウェイの値で上書きする。
// ゲートウェイが注文を返さない（404）場合はerrUnknownOrderを返す。
func (s *Server) verifyOrder(ctx context.Context, params *webhookdb.CreateWebhookNotificationParams) error {
	order, err := s.gateway.RetrieveOrder(ctx, params.OrderID)
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return errUnknownOrder
	}
	if err != nil {
		return err
	}

	if status := sanitize(order.Status); status != "" {
		params.OrderStatus = status
	}
	if order.Amount != "" {
		d, err := decimal.NewFromString(order.Amount)
		if err != nil || !amountInRange(d) {
			return fmt.Errorf("ゲートウェイの金額が不正です: %q", order.Amount)
		}
		params.Amount = formatAmount(d)
	}
	return nil
}

// amountInRange は金額が保存できる範囲にあるかどうかを返す。
// formatAmountより前に呼ぶこと。
func amountInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp <= maxAmountExponent && exp >= -maxAmountExponent && d.Coefficient().BitLen() <= maxAmountBits
}

// sanitize はマークアップを取り除いた平文を返す。
// エスケープは描画時に行うため、ここでは実体参照を元の文字に戻す。
func sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(s)))
}

// formatAmount は金額を小数点以下の桁数を保ったまま文字列にする。
// "10.00" は "10.00" のまま、1.5e3 は "1500" になる。
func formatAmount(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

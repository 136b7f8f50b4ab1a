// Package event はWebhook通知に関するドメインイベントの型を定義する。
//
// 受信した通知や管理操作をイベントとして記録し、設定されていれば
// Event StoreへJSONで送信する。
package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeOrder はゲートウェイ上の注文を表す。
	AggregateTypeOrder AggregateType = "Order"
	// AggregateTypeNotificationStore は通知ストア全体を表す。
	AggregateTypeNotificationStore AggregateType = "NotificationStore"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeWebhookNotificationReceived はゲートウェイからWebhook通知を受信したことを表す。
	TypeWebhookNotificationReceived Type = "WebhookNotificationReceived"
	// TypeWebhookNotificationsPurged は保存済みの通知が一括削除されたことを表す。
	TypeWebhookNotificationsPurged Type = "WebhookNotificationsPurged"
)

// Event は不変のイベントレコードを表す。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// Version はAggregate内でのイベントの順序番号。
	Version int64 `json:"version"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// WebhookNotificationReceivedData はWebhookNotificationReceivedイベントのデータ。
type WebhookNotificationReceivedData struct {
	// NotificationID は保存された通知のID。
	NotificationID string `json:"notification_id"`
	OrderID        string `json:"order_id"`
	TransactionID  string `json:"transaction_id"`
	OrderStatus    string `json:"order_status"`
	// Amount は正規化済みの金額文字列。
	Amount string `json:"amount"`
}

// WebhookNotificationsPurgedData はWebhookNotificationsPurgedイベントのデータ。
type WebhookNotificationsPurgedData struct {
	// Deleted は削除された通知の件数。
	Deleted int64 `json:"deleted"`
	// UserID は削除を実行した管理者のID。
	UserID string `json:"user_id"`
}

// Package webhook は決済ゲートウェイのWebhook通知サービスの内部実装を提供する。
//
// ゲートウェイから POST /process-webhook で受け取った通知を共有シークレットで
// 検証してSQLiteに保存し、GET /list-webhook-notifications で受信順のJSON配列として、
// GET /webhooks で通知一覧ページとして返す。
package webhook

// Package httpclient はJSON APIを呼び出すHTTPクライアントを提供する。
//
// Event Storeへのイベント送信や、通知一覧エンドポイントの取得に使用する。
// GETリクエストは通信エラーと5xxに限り、線形バックオフで再試行できる（cenkalti/backoff）。
// 決済ゲートウェイ向けにPUTとBasic認証にも対応する。
package httpclient

// Package view は決済ゲートウェイのWebhook通知一覧ビューを提供する。
//
// ページの読み込みごとに Load を1度呼び出し、通知一覧エンドポイントから
// 取得した通知をテーブルとして、0件の場合は通知URLの設定案内を描画する。
// 取得に失敗した場合はテーブルも案内も表示せず、エラー表示に切り替える。
// 描画は html/template で行い、通知の値はすべてエスケープされる。
package view

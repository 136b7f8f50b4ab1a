// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// 管理API用のJWT検証、通知一覧APIのCORS設定、パニックリカバリを含む。
package middleware

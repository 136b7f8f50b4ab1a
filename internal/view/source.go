package view

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/nao1215/paywebhook/pkg/httpclient"
)

// ListPath は通知一覧エンドポイントの相対パス。ページURLを基準に解決する。
const ListPath = "list-webhook-notifications"

// Source は通知一覧の取得元。
type Source interface {
	// ListNotifications はpageURLで表示するページ向けに通知一覧を返す。
	ListNotifications(ctx context.Context, pageURL string) ([]Notification, error)
}

// SourceFunc は関数をSourceとして扱うためのアダプタ。
type SourceFunc func(ctx context.Context, pageURL string) ([]Notification, error)

// ListNotifications はf(ctx, pageURL)を呼び出す。
func (f SourceFunc) ListNotifications(ctx context.Context, pageURL string) ([]Notification, error) {
	return f(ctx, pageURL)
}

// RemoteSource はページURLから解決した一覧エンドポイントをHTTP GETで取得する。
type RemoteSource struct {
	client *httpclient.Client
}

// NewRemoteSource は新しいRemoteSourceを生成する。
// clientはベースURLなし（httpclient.New("")）で生成し、再試行やタイムアウトは呼び出し側で設定する。
func NewRemoteSource(client *httpclient.Client) *RemoteSource {
	return &RemoteSource{client: client}
}

// ListNotifications は一覧エンドポイントを取得してJSON配列をデコードする。
func (s *RemoteSource) ListNotifications(ctx context.Context, pageURL string) ([]Notification, error) {
	endpoint, err := ResolveEndpoint(pageURL)
	if err != nil {
		return nil, err
	}

	var notifications []Notification
	if err := s.client.GetJSON(ctx, endpoint, &notifications); err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗: %w", err)
	}
	return notifications, nil
}

// ResolveEndpoint はページURLを基準に一覧エンドポイントの絶対URLを返す。
// 例: https://host/app/webhooks -> https://host/app/list-webhook-notifications
func ResolveEndpoint(pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("ページURLが不正です: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return "", errors.New("ページURLは絶対URLである必要があります")
	}
	return base.ResolveReference(&url.URL{Path: ListPath}).String(), nil
}

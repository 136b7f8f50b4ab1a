// Webhookサービスのエントリポイント。
// 決済ゲートウェイからのWebhook通知を受信して保存し、
// 通知一覧のJSON APIと一覧ページ（/webhooks）を提供する。
package main

import (
	"context"
	"log"

	"github.com/nao1215/paywebhook/internal/webhook"
	"github.com/nao1215/paywebhook/pkg/config"
	"github.com/nao1215/paywebhook/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	logCloser := logging.Setup(cfg.LogFile)
	defer logCloser.Close()

	server, err := webhook.NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Webhookサーバーの初期化に失敗: %v", err)
	}
	defer server.Close()

	log.Printf("Webhookサービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("Webhookサービスの起動に失敗: %v", err)
	}
}

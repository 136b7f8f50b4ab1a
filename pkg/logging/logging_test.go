package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestSetup はログファイルへの出力を検証する。
// 標準ロガーを書き換えるため並列実行しない。
func TestSetup(t *testing.T) {
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	t.Run("パスが空の場合は何もしないCloserを返すこと", func(t *testing.T) {
		closer := Setup("")
		if err := closer.Close(); err != nil {
			t.Errorf("Close()でエラーが発生: %v", err)
		}
	})

	t.Run("指定したファイルにログが書き込まれること", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "webhook.log")
		closer := Setup(path)

		log.Printf("[Test] ログ出力の確認")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close()でエラーが発生: %v", err)
		}
		log.SetOutput(os.Stderr)

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ログファイルの読み込みに失敗: %v", err)
		}
		if !strings.Contains(string(data), "ログ出力の確認") {
			t.Errorf("ログファイルの内容 = %q", string(data))
		}
	})
}

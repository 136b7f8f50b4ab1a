// Package logging は標準ロガーとGinのログ出力先を設定する。
package logging

import (
	"io"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
)

// Setup はログの出力先を設定する。
// pathが空の場合は標準エラー出力のみ、指定された場合はローテーションするファイルにも書き込む。
// 返されたio.Closerはプロセス終了時に閉じる。
func Setup(path string) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if path == "" {
		return io.NopCloser(nil)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     30, // 日
	}
	w := io.MultiWriter(os.Stderr, rotator)
	log.SetOutput(w)
	gin.DefaultWriter = w
	gin.DefaultErrorWriter = w
	return rotator
}

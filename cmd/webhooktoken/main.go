// 管理API用トークンの発行ツール。
// JWT_SECRET で署名した有効期限24時間のJWTを標準出力に書き出す。
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/nao1215/paywebhook/pkg/config"
	"github.com/nao1215/paywebhook/pkg/middleware"
)

// errNoSecret は署名キーが設定されていないことを表す。
var errNoSecret = errors.New("JWT_SECRET が設定されていません")

// options はコマンドライン引数。
type options struct {
	User  string `short:"u" long:"user" description:"管理者のユーザーID" required:"true"`
	Email string `short:"e" long:"email" description:"管理者のメールアドレス"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	if err := run(os.Stdout, opts, cfg.JWTSecret); err != nil {
		log.Fatalf("トークンの発行に失敗: %v", err)
	}
}

// run はsecretで署名したトークンをwに書き出す。
func run(w io.Writer, opts options, secret string) error {
	if secret == "" {
		return errNoSecret
	}
	token, err := middleware.GenerateJWT(secret, opts.User, opts.Email)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

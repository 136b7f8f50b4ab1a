// 通知一覧ビューのコマンドラインツール。
// 稼働中のWebhookサービスから通知一覧を取得し、ページと同じHTMLを標準出力に書き出す。
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/nao1215/paywebhook/internal/view"
	"github.com/nao1215/paywebhook/pkg/config"
	"github.com/nao1215/paywebhook/pkg/httpclient"
)

// options はコマンドライン引数。
// 試行回数とタイムアウトと待機時間の既定値は設定（FETCH_*）から与えられる。
type options struct {
	URL     string        `short:"u" long:"url" description:"通知一覧ページのURL（例: https://shop.example.com/webhooks）" required:"true"`
	Retries int           `short:"r" long:"retries" description:"取得の最大試行回数（既定値: FETCH_RETRIES）"`
	Timeout time.Duration `short:"t" long:"timeout" description:"1回の取得のタイムアウト（既定値: FETCH_TIMEOUT）"`
	Backoff time.Duration `short:"b" long:"backoff" description:"再試行の待機時間（既定値: FETCH_BACKOFF）"`
	Page    bool          `short:"p" long:"page" description:"通知一覧部分ではなくページ全体を出力する"`
}

// defaultOptions は取得設定をフラグ解析前の初期値にしたoptionsを返す。
func defaultOptions(fetch config.FetchConfig) options {
	return options{
		Retries: fetch.Retries,
		Timeout: fetch.Timeout,
		Backoff: fetch.Backoff,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	opts := defaultOptions(cfg.Fetch)
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if err := run(context.Background(), os.Stdout, opts); err != nil {
		log.Fatalf("通知一覧の出力に失敗: %v", err)
	}
}

// run は通知一覧を読み込み、HTMLをwに書き出す。
// 取得に失敗した場合もエラー表示を含むHTMLを出力し、終了コードは1にする。
func run(ctx context.Context, w io.Writer, opts options) error {
	client := httpclient.New("",
		httpclient.WithTimeout(opts.Timeout),
		httpclient.WithRetry(opts.Retries, opts.Backoff),
	)
	v := view.New(view.NewRemoteSource(client))
	page, loadErr := v.Load(ctx, opts.URL)

	render := v.Render
	if opts.Page {
		render = v.RenderPage
	}
	if err := render(w, page); err != nil {
		return err
	}
	return loadErr
}

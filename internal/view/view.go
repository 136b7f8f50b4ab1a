package view

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"strings"
)

// PageTemplate は通知一覧ページ全体のテンプレート名。
const PageTemplate = "webhooks.html"

// fragmentTemplate はエラー表示、空状態、通知テーブルを含む断片のテンプレート名。
const fragmentTemplate = "notifications"

// DefaultErrorMessage は取得に失敗した場合に表示する文言。
const DefaultErrorMessage = "Unable to load webhook notifications. Please reload the page to try again."

// 表示状態。メトリクスのラベルにも使用する。
const (
	StateRows  = "rows"
	StateEmpty = "empty"
	StateError = "error"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Templates は解析済みのHTMLテンプレートを返す。
// gin.Engine.SetHTMLTemplate に渡してページを描画する。
func Templates() *template.Template {
	return templates
}

// Page は1回のページ読み込みで構築された表示状態。
// NotificationsVisible、EmptyVisible、ErrorVisible のうち真になるのは高々1つ。
type Page struct {
	// URL は読み込み元のページURL。
	URL  string
	Rows []Row
	// NotificationsVisible は通知テーブル（class="notifications"）を表示するかどうか。
	NotificationsVisible bool
	// EmptyVisible は空状態（class="no-notification"）を表示するかどうか。
	EmptyVisible bool
	// EmptyMessage は空状態に追加する案内文。空状態のときだけ設定される。
	EmptyMessage string
	ErrorVisible bool
	ErrorMessage string
}

// State はページの表示状態を返す。
func (p *Page) State() string {
	switch {
	case p.ErrorVisible:
		return StateError
	case p.EmptyVisible:
		return StateEmpty
	default:
		return StateRows
	}
}

// View は通知一覧ビュー。
type View struct {
	source       Source
	errorMessage string
}

// Option はViewの設定を変更する。
type Option func(*View)

// WithErrorMessage は取得に失敗した場合に表示する文言を変更する。
func WithErrorMessage(msg string) Option {
	return func(v *View) { v.errorMessage = msg }
}

// New は新しい通知一覧ビューを生成する。
func New(source Source, opts ...Option) *View {
	v := &View{source: source, errorMessage: DefaultErrorMessage}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load はページ読み込み時に1度だけ呼び出す初期化処理。
// 通知一覧を取得し、テーブル・空状態・エラーのいずれかを表示するPageを構築する。
// 一覧は取得した順序のまま1件1行で表示し、並び替えや重複排除はしない。
// 取得に失敗した場合もエラー表示のPageを返し、あわせて原因のエラーを返す。
func (v *View) Load(ctx context.Context, pageURL string) (*Page, error) {
	page := &Page{URL: pageURL}

	notifications, err := v.source.ListNotifications(ctx, pageURL)
	if err != nil {
		log.Printf("[NotificationListView] 通知一覧の取得に失敗: %v", err)
		page.ErrorVisible = true
		page.ErrorMessage = v.errorMessage
		return page, err
	}

	rows := make([]Row, 0, len(notifications))
	for _, n := range notifications {
		rows = append(rows, toRow(n))
	}
	log.Printf("[NotificationListView] notifications = %+v", rows)

	if len(rows) == 0 {
		page.EmptyVisible = true
		page.EmptyMessage = EmptyMessage(NotificationURL(pageURL))
		return page, nil
	}

	page.Rows = rows
	page.NotificationsVisible = true
	return page, nil
}

// Render はページの通知一覧部分をHTMLとして書き込む。値はすべてエスケープされる。
func (v *View) Render(w io.Writer, p *Page) error {
	if err := templates.ExecuteTemplate(w, fragmentTemplate, p); err != nil {
		return fmt.Errorf("通知一覧の描画に失敗: %w", err)
	}
	return nil
}

// RenderPage はページ全体をHTMLとして書き込む。
func (v *View) RenderPage(w io.Writer, p *Page) error {
	if err := templates.ExecuteTemplate(w, PageTemplate, p); err != nil {
		return fmt.Errorf("通知一覧ページの描画に失敗: %w", err)
	}
	return nil
}

// NotificationURL はページURLを最後の "/" の直前までで切り詰めたURLを返す。
// "/" を含まない場合はそのまま返す。
func NotificationURL(pageURL string) string {
	i := strings.LastIndex(pageURL, "/")
	if i < 0 {
		return pageURL
	}
	return pageURL[:i]
}

// EmptyMessage は通知が1件もない場合の案内文を返す。
func EmptyMessage(notificationURL string) string {
	return "No notifications found, please configure the url - '" + notificationURL +
		"' in merchant settings to receive notifications."
}

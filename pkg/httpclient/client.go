package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrTransport はレスポンスを受け取る前に通信が失敗したことを表す。
var ErrTransport = errors.New("HTTP通信に失敗")

// StatusError は2xx以外のステータスコードが返されたことを表す。
type StatusError struct {
	// StatusCode はレスポンスのステータスコード。
	StatusCode int
	// Body はレスポンスボディ。
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, body=%s", e.StatusCode, e.Body)
}

// Client はJSON APIを呼び出すHTTPクライアント。
// GETリクエストのみ、通信エラーと5xxに対して再試行する。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先のベースURL。空の場合はpathを絶対URLとして扱う。
	baseURL string
	// maxAttempts はGETリクエストの最大試行回数。
	maxAttempts int
	// backoff は再試行ごとに加算される待機時間。
	backoff time.Duration
	// username と password はBasic認証の資格情報。usernameが空の場合は送らない。
	username string
	password string
}

// Option はClientの設定を変更する。
type Option func(*Client)

// WithTimeout はリクエスト1回あたりのタイムアウトを設定する。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetry はGETリクエストの最大試行回数と線形バックオフの単位時間を設定する。
func WithRetry(maxAttempts int, step time.Duration) Option {
	return func(c *Client) {
		if maxAttempts < 1 {
			maxAttempts = 1
		}
		c.maxAttempts = maxAttempts
		c.backoff = step
	}
}

// WithBasicAuth はすべてのリクエストにBasic認証ヘッダーを付ける。
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithHTTPClient は内部で使用する*http.Clientを差し替える。
// 既存のタイムアウト設定は引き継がない。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New は新しいHTTPクライアントを生成する。
// baseURLには接続先のベースURL（例: "http://eventstore:8084"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		maxAttempts: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
// レスポンスボディをresultにデシリアライズする。再試行は行わない。
func (c *Client) PostJSON(ctx context.Context, path string, body any, result any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, result)
}

// PutJSON は指定パスにJSONボディでPUTリクエストを送信する。再試行は行わない。
func (c *Client) PutJSON(ctx context.Context, path string, body any, result any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, result)
}

// GetJSON は指定パスにGETリクエストを送信する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) GetJSON(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		payload = b
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = c.maxAttempts
	}

	url := c.baseURL + path
	attempt := 0
	operation := func() error {
		attempt++
		err := c.do(ctx, method, url, payload, result)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		if attempt < attempts {
			log.Printf("[httpclient] %s %s の試行 %d/%d に失敗: %v", method, url, attempt, attempts, err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: c.backoff}, uint64(attempts-1)),
		ctx,
	)
	return backoff.Retry(operation, policy)
}

// linearBackOff は再試行のたびに待機時間をstepずつ延ばす。
type linearBackOff struct {
	step time.Duration
	n    int64
}

// NextBackOff は次の待機時間を返す。
func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return b.step * time.Duration(b.n)
}

// Reset は待機時間を初期状態に戻す。
func (b *linearBackOff) Reset() {
	b.n = 0
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, result any) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}

// retryable は再試行で回復する見込みのあるエラーかどうかを判定する。
func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}
	return errors.Is(err, ErrTransport)
}

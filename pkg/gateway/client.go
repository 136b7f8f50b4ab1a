package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nao1215/paywebhook/pkg/httpclient"
)

// Client はゲートウェイAPIのクライアント。
type Client struct {
	cfg  Config
	http *httpclient.Client
}

// New は新しいゲートウェイクライアントを生成する。
// optsのタイムアウトや再試行はそのまま内部のhttpclientに渡す。
func New(cfg Config, opts ...httpclient.Option) *Client {
	opts = append([]httpclient.Option{
		httpclient.WithBasicAuth("merchant."+cfg.MerchantID, cfg.Password),
	}, opts...)
	return &Client{cfg: cfg, http: httpclient.New("", opts...)}
}

// Config は接続設定を返す。
func (c *Client) Config() Config {
	return c.cfg
}

// Do はRequestをゲートウェイに送信し、レスポンスボディをそのまま返す。
// GETの操作はボディを送らない。セッション作成はセッションのURLに送る。
func (c *Client) Do(ctx context.Context, req *Request) (json.RawMessage, error) {
	target := c.cfg.RequestURL(req)
	if req.Operation == OpCreateCheckoutSession {
		target = c.cfg.SessionRequestURL()
	}

	var raw json.RawMessage
	var err error
	switch req.Method {
	case http.MethodGet:
		err = c.http.GetJSON(ctx, target, &raw)
	case http.MethodPost:
		err = c.http.PostJSON(ctx, target, BuildPayload(req), &raw)
	default:
		err = c.http.PutJSON(ctx, target, BuildPayload(req), &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%sの呼び出しに失敗: %w", req.Operation, err)
	}
	return raw, nil
}

// RetrieveOrder は注文IDで注文を照会する。
func (c *Client) RetrieveOrder(ctx context.Context, orderID string) (*Order, error) {
	req := NewRequest(OpRetrieveOrder)
	req.OrderID = orderID

	raw, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseOrderResponse(raw)
}

// CreateCheckoutSession はHosted Checkoutのセッションを作成する。
// reqのOperationはOpCreateCheckoutSessionである必要がある。
func (c *Client) CreateCheckoutSession(ctx context.Context, req *Request) (*CheckoutSession, error) {
	if req.Operation != OpCreateCheckoutSession {
		return nil, fmt.Errorf("セッション作成ではない操作です: %s", req.Operation)
	}
	raw, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseSessionResponse(raw)
}

package gateway

import (
	"net/url"
	"strings"
)

// Config はゲートウェイへの接続設定。
type Config struct {
	// Host はゲートウェイのベースURL（例: https://test-gateway.mastercard.com/api/rest）。
	Host       string
	APIVersion string
	MerchantID string
	// Password はAPIパスワード。Basic認証のパスワードとして送る。
	Password string
}

// merchantURL は "<host>/version/<v>/merchant/<id>" を返す。
func (c Config) merchantURL() string {
	return strings.TrimRight(c.Host, "/") + "/version/" + url.PathEscape(c.APIVersion) +
		"/merchant/" + url.PathEscape(c.MerchantID)
}

// RequestURL は注文、またはトランザクションIDがある場合はその注文のトランザクションのURLを返す。
func (c Config) RequestURL(req *Request) string {
	u := c.merchantURL() + "/order/" + url.PathEscape(req.OrderID)
	if req.TransactionID != "" {
		u += "/transaction/" + url.PathEscape(req.TransactionID)
	}
	return u
}

// SessionRequestURL はセッション作成のURLを返す。
// sessionIDを指定した場合はそのセッションのURLを返す。
func (c Config) SessionRequestURL(sessionID ...string) string {
	u := c.merchantURL() + "/session"
	if len(sessionID) > 0 && sessionID[0] != "" {
		u += "/" + url.PathEscape(sessionID[0])
	}
	return u
}

// SecureIDRequestURL は3DSecureIdのURLを返す。
func (c Config) SecureIDRequestURL(secureID string) string {
	return c.merchantURL() + "/3DSecureId/" + url.PathEscape(secureID)
}

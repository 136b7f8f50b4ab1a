package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// confirmAtProvider はプロバイダ側で支払いを確定させる指定。
const confirmAtProvider = "CONFIRM_AT_PROVIDER"

// Payload はゲートウェイAPIのリクエストボディ。
type Payload struct {
	APIOperation   Operation           `json:"apiOperation,omitempty"`
	SecureID       string              `json:"3DSecureId,omitempty"`
	Order          *orderPayload       `json:"order,omitempty"`
	Transaction    *transactionPayload `json:"transaction,omitempty"`
	SourceOfFunds  *sourceOfFunds      `json:"sourceOfFunds,omitempty"`
	BrowserPayment *browserPayment     `json:"browserPayment,omitempty"`
	Interaction    *interaction        `json:"interaction,omitempty"`
	Session        *session            `json:"session,omitempty"`
	SecureAuth     *secureAuth         `json:"3DSecure,omitempty"`
}

type orderPayload struct {
	ID       string `json:"id,omitempty"`
	Amount   string `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
}

type transactionPayload struct {
	Amount              string `json:"amount,omitempty"`
	Currency            string `json:"currency,omitempty"`
	TargetTransactionID string `json:"targetTransactionId,omitempty"`
}

type sourceOfFunds struct {
	Type     string    `json:"type,omitempty"`
	Provided *provided `json:"provided,omitempty"`
}

type provided struct {
	Card *card `json:"card"`
}

type card struct {
	SecurityCode string  `json:"securityCode,omitempty"`
	Number       string  `json:"number,omitempty"`
	Expiry       *expiry `json:"expiry,omitempty"`
}

type expiry struct {
	Month string `json:"month,omitempty"`
	Year  string `json:"year,omitempty"`
}

type paymentConfirmation struct {
	PaymentConfirmation string `json:"paymentConfirmation"`
}

type browserPayment struct {
	Operation  string               `json:"operation,omitempty"`
	ReturnURL  string               `json:"returnUrl,omitempty"`
	Alipay     *paymentConfirmation `json:"alipay,omitempty"`
	Bancanet   *paymentConfirmation `json:"bancanet,omitempty"`
	Giropay    *paymentConfirmation `json:"giropay,omitempty"`
	Ideal      *paymentConfirmation `json:"ideal,omitempty"`
	Multibanco *paymentConfirmation `json:"multibanco,omitempty"`
	Paypal     *paymentConfirmation `json:"paypal,omitempty"`
	Sofort     *paymentConfirmation `json:"sofort,omitempty"`
	UnionPay   *paymentConfirmation `json:"unionpay,omitempty"`
}

type interaction struct {
	ReturnURL string `json:"returnUrl"`
}

type session struct {
	ID string `json:"id"`
}

type secureAuth struct {
	PaRes                  string                  `json:"paRes,omitempty"`
	AuthenticationRedirect *authenticationRedirect `json:"authenticationRedirect,omitempty"`
}

type authenticationRedirect struct {
	ResponseURL string `json:"responseUrl"`
}

// BuildPayload はRequestからリクエストボディを組み立てる。
// 値が1つもないオブジェクトは含めない。
func BuildPayload(req *Request) Payload {
	p := Payload{APIOperation: req.Operation, SecureID: req.SecureID}

	order := orderPayload{Amount: req.OrderAmount, Currency: req.OrderCurrency}
	// 注文IDをボディに含めるのはセッション作成時のみ。他の操作ではエラーになる
	if req.Operation == OpCreateCheckoutSession {
		order.ID = req.OrderID
	}
	if order != (orderPayload{}) {
		p.Order = &order
	}

	txn := transactionPayload{
		Amount:              req.TransactionAmount,
		Currency:            req.TransactionCurrency,
		TargetTransactionID: req.TargetTransactionID,
	}
	if txn != (transactionPayload{}) {
		p.Transaction = &txn
	}

	c := card{SecurityCode: req.SecurityCode, Number: req.CardNumber}
	if req.ExpiryMonth != "" || req.ExpiryYear != "" {
		c.Expiry = &expiry{Month: req.ExpiryMonth, Year: req.ExpiryYear}
	}
	funds := sourceOfFunds{Type: req.SourceType}
	if c.SecurityCode != "" || c.Number != "" || c.Expiry != nil {
		funds.Provided = &provided{Card: &c}
	}
	if funds.Type != "" || funds.Provided != nil {
		p.SourceOfFunds = &funds
	}

	bp := browserPayment{Operation: req.BrowserPaymentOperation}
	if req.SourceType != "" {
		setPaymentConfirmation(&bp, req.SourceType)
	}
	if req.ReturnURL != "" {
		switch req.Operation {
		case OpCreateCheckoutSession:
			p.Interaction = &interaction{ReturnURL: req.ReturnURL}
		case OpInitiateBrowserPay, OpConfirmBrowserPay:
			bp.ReturnURL = req.ReturnURL
		}
	}
	if bp != (browserPayment{}) {
		p.BrowserPayment = &bp
	}

	if req.SessionID != "" {
		p.Session = &session{ID: req.SessionID}
	}

	auth := secureAuth{PaRes: req.PaymentAuthResponse}
	if req.SecureIDResponseURL != "" {
		auth.AuthenticationRedirect = &authenticationRedirect{ResponseURL: req.SecureIDResponseURL}
	}
	if auth.PaRes != "" || auth.AuthenticationRedirect != nil {
		p.SecureAuth = &auth
	}
	return p
}

// MarshalPayload はRequestのリクエストボディをJSONにする。
func MarshalPayload(req *Request) ([]byte, error) {
	b, err := json.Marshal(BuildPayload(req))
	if err != nil {
		return nil, fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
	}
	return b, nil
}

// setPaymentConfirmation はブラウザ決済のプロバイダに確定方法を設定する。
// 対応していない支払い元の種別は何もしない。
func setPaymentConfirmation(bp *browserPayment, sourceType string) {
	confirm := &paymentConfirmation{PaymentConfirmation: confirmAtProvider}
	switch strings.ToUpper(sourceType) {
	case "ALIPAY":
		bp.Alipay = confirm
	case "BANCANET":
		bp.Bancanet = confirm
	case "GIROPAY":
		bp.Giropay = confirm
	case "IDEAL":
		bp.Ideal = confirm
	case "MULTIBANCO":
		bp.Multibanco = confirm
	case "PAYPAL":
		bp.Paypal = confirm
	case "SOFORT":
		bp.Sofort = confirm
	case "UNION_PAY":
		bp.UnionPay = confirm
	}
}

package gateway

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Operation はゲートウェイAPIの操作種別（apiOperation）。
type Operation string

const (
	OpAuthorize             Operation = "AUTHORIZE"
	OpPay                   Operation = "PAY"
	OpCapture               Operation = "CAPTURE"
	OpRefund                Operation = "REFUND"
	OpVoid                  Operation = "VOID"
	OpUpdateAuthorization   Operation = "UPDATE_AUTHORIZATION"
	OpRetrieveOrder         Operation = "RETRIEVE_ORDER"
	OpRetrieveTransaction   Operation = "RETRIEVE_TRANSACTION"
	OpCreateCheckoutSession Operation = "CREATE_CHECKOUT_SESSION"
	OpInitiateBrowserPay    Operation = "INITIATE_BROWSER_PAYMENT"
	OpConfirmBrowserPay     Operation = "CONFIRM_BROWSER_PAYMENT"
)

// browserPaymentReceiptPath はブラウザ決済完了後に戻るパス。
const browserPaymentReceiptPath = "/browserPaymentReceipt"

// Request はゲートウェイへの1回のAPI呼び出しの内容。
// 空文字列のフィールドはリクエストボディに含めない。
type Request struct {
	Operation Operation
	// Method はHTTPメソッド。NewRequestが操作に応じて設定する。
	Method string

	OrderID             string
	OrderAmount         string
	OrderCurrency       string
	TransactionID       string
	TransactionAmount   string
	TransactionCurrency string
	TargetTransactionID string

	// SourceType は支払い元の種別（CARD、PAYPAL など）。
	SourceType   string
	CardNumber   string
	SecurityCode string
	ExpiryMonth  string
	ExpiryYear   string

	BrowserPaymentOperation string
	ReturnURL               string
	SessionID               string

	SecureID            string
	SecureIDResponseURL string
	// PaymentAuthResponse はACSから返されたPaRes。
	PaymentAuthResponse string
}

// NewRequest は操作に応じてIDとHTTPメソッドを設定したRequestを生成する。
// 注文IDとトランザクションIDは新規採番し、操作がURLに含めないものは空にする。
func NewRequest(op Operation) *Request {
	req := &Request{
		Operation:     op,
		Method:        http.MethodPut,
		OrderID:       NewID(),
		TransactionID: NewID(),
	}
	switch op {
	case OpCapture, OpRefund, OpVoid, OpUpdateAuthorization:
		req.OrderID = ""
	case OpRetrieveOrder, OpRetrieveTransaction:
		req.Method = http.MethodGet
		req.OrderID = ""
		req.TransactionID = ""
	case OpCreateCheckoutSession:
		req.Method = http.MethodPost
	}
	return req
}

// NewBrowserPaymentRequest はブラウザ決済を開始するRequestを生成する。
// 戻り先URLはrequestURLのスキームとホストに完了ページのパスを付けたもの。
func NewBrowserPaymentRequest(operation, sourceType, requestURL string) (*Request, error) {
	u, err := url.Parse(requestURL)
	if err != nil {
		return nil, fmt.Errorf("戻り先URLの解析に失敗: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("戻り先URLは絶対URLである必要があります: %q", requestURL)
	}

	req := &Request{
		Operation:               OpInitiateBrowserPay,
		Method:                  http.MethodPut,
		OrderID:                 NewID(),
		TransactionID:           NewID(),
		BrowserPaymentOperation: operation,
		SourceType:              sourceType,
	}
	query := url.Values{"transactionId": {req.TransactionID}, "orderId": {req.OrderID}}
	req.ReturnURL = (&url.URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     browserPaymentReceiptPath,
		RawQuery: query.Encode(),
	}).String()
	return req, nil
}

// NewID はゲートウェイ向けの10文字の英数字IDを返す。
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

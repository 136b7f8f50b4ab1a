package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField はレスポンスに必須の項目が含まれていないことを表す。
var ErrMissingField = errors.New("レスポンスに必須項目がありません")

// value はJSONの文字列・数値のどちらも文字列として受け取る。
// 数値は元の表記を保持する。
type value string

func (v *value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = value(s)
	default:
		*v = value(b)
	}
	return nil
}

// CheckoutSession はHosted Checkoutのセッション。
type CheckoutSession struct {
	ID      string
	Version string
	// SuccessIndicator は支払い完了時に戻り先URLへ付与される値。含まれない場合は空。
	SuccessIndicator string
}

// SecureID は3DSecureIdの確認結果。
type SecureID struct {
	// Status は3DSの要約ステータス（CARD_ENROLLED など）。
	Status string
	// HTMLBodyContent はACSへリダイレクトするためのHTML。
	HTMLBodyContent string
}

// HostedCheckoutResponse はHosted Checkout完了後の注文照会結果。
type HostedCheckoutResponse struct {
	APIResult        string
	GatewayCode      string
	OrderAmount      string
	OrderCurrency    string
	OrderDescription string
	OrderID          string
}

// BrowserPaymentResponse はブラウザ決済の結果。
type BrowserPaymentResponse struct {
	AcquirerMessage string
	APIResult       string
	GatewayCode     string
	OrderAmount     string
	OrderCurrency   string
	OrderID         string
}

// Order はRETRIEVE_ORDERで取得した注文。
type Order struct {
	ID       string
	Amount   string
	Currency string
	// Status は注文ステータス（CAPTURED、FAILED など）。
	Status string
	// Result は照会の結果（SUCCESS など）。
	Result string
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("レスポンスのデシリアライズに失敗: %w", err)
	}
	return nil
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

// ParseSessionResponse はセッション作成のレスポンスを解析する。
func ParseSessionResponse(data []byte) (*CheckoutSession, error) {
	var resp struct {
		Session *struct {
			ID      value `json:"id"`
			Version value `json:"version"`
		} `json:"session"`
		SuccessIndicator value `json:"successIndicator"`
	}
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	if resp.Session == nil || resp.Session.ID == "" {
		return nil, missing("session.id")
	}
	return &CheckoutSession{
		ID:               string(resp.Session.ID),
		Version:          string(resp.Session.Version),
		SuccessIndicator: string(resp.SuccessIndicator),
	}, nil
}

// Parse3DSecureResponse は3DSecureIdのレスポンスを解析する。
func Parse3DSecureResponse(data []byte) (*SecureID, error) {
	var resp struct {
		SecureAuth *struct {
			SummaryStatus          value `json:"summaryStatus"`
			AuthenticationRedirect *struct {
				Simple *struct {
					HTMLBodyContent value `json:"htmlBodyContent"`
				} `json:"simple"`
			} `json:"authenticationRedirect"`
		} `json:"3DSecure"`
	}
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	if resp.SecureAuth == nil {
		return nil, missing("3DSecure")
	}
	redirect := resp.SecureAuth.AuthenticationRedirect
	if redirect == nil || redirect.Simple == nil {
		return nil, missing("3DSecure.authenticationRedirect.simple")
	}
	return &SecureID{
		Status:          string(resp.SecureAuth.SummaryStatus),
		HTMLBodyContent: string(redirect.Simple.HTMLBodyContent),
	}, nil
}

// ParseHostedCheckoutResponse は注文照会のレスポンスから最初のトランザクションの結果を取り出す。
func ParseHostedCheckoutResponse(data []byte) (*HostedCheckoutResponse, error) {
	var resp struct {
		Transaction []struct {
			Result   value `json:"result"`
			Response *struct {
				GatewayCode value `json:"gatewayCode"`
			} `json:"response"`
			Order *struct {
				ID          value `json:"id"`
				Amount      value `json:"amount"`
				Currency    value `json:"currency"`
				Description value `json:"description"`
			} `json:"order"`
		} `json:"transaction"`
	}
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	if len(resp.Transaction) == 0 {
		return nil, missing("transaction")
	}
	txn := resp.Transaction[0]
	if txn.Response == nil {
		return nil, missing("transaction[0].response")
	}
	if txn.Order == nil {
		return nil, missing("transaction[0].order")
	}
	return &HostedCheckoutResponse{
		APIResult:        string(txn.Result),
		GatewayCode:      string(txn.Response.GatewayCode),
		OrderAmount:      string(txn.Order.Amount),
		OrderCurrency:    string(txn.Order.Currency),
		OrderDescription: string(txn.Order.Description),
		OrderID:          string(txn.Order.ID),
	}, nil
}

// ParseBrowserPaymentResponse はブラウザ決済のトランザクションレスポンスを解析する。
func ParseBrowserPaymentResponse(data []byte) (*BrowserPaymentResponse, error) {
	var resp struct {
		Result   value `json:"result"`
		Response *struct {
			AcquirerMessage value `json:"acquirerMessage"`
			GatewayCode     value `json:"gatewayCode"`
		} `json:"response"`
		Order *struct {
			ID       value `json:"id"`
			Amount   value `json:"amount"`
			Currency value `json:"currency"`
		} `json:"order"`
	}
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	if resp.Response == nil {
		return nil, missing("response")
	}
	if resp.Order == nil {
		return nil, missing("order")
	}
	return &BrowserPaymentResponse{
		AcquirerMessage: string(resp.Response.AcquirerMessage),
		APIResult:       string(resp.Result),
		GatewayCode:     string(resp.Response.GatewayCode),
		OrderAmount:     string(resp.Order.Amount),
		OrderCurrency:   string(resp.Order.Currency),
		OrderID:         string(resp.Order.ID),
	}, nil
}

// BrowserPaymentRedirectURL はブラウザ決済開始のレスポンスからリダイレクト先を取り出す。
func BrowserPaymentRedirectURL(data []byte) (string, error) {
	var resp struct {
		BrowserPayment *struct {
			RedirectURL value `json:"redirectUrl"`
		} `json:"browserPayment"`
	}
	if err := decode(data, &resp); err != nil {
		return "", err
	}
	if resp.BrowserPayment == nil || resp.BrowserPayment.RedirectURL == "" {
		return "", missing("browserPayment.redirectUrl")
	}
	return string(resp.BrowserPayment.RedirectURL), nil
}

// ParseOrderResponse はRETRIEVE_ORDERのレスポンスを解析する。
func ParseOrderResponse(data []byte) (*Order, error) {
	var resp struct {
		ID       value `json:"id"`
		Amount   value `json:"amount"`
		Currency value `json:"currency"`
		Status   value `json:"status"`
		Result   value `json:"result"`
	}
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, missing("id")
	}
	return &Order{
		ID:       string(resp.ID),
		Amount:   string(resp.Amount),
		Currency: string(resp.Currency),
		Status:   string(resp.Status),
		Result:   string(resp.Result),
	}, nil
}

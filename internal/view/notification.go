package view

import (
	"bytes"
	"encoding/json"
)

// Text は表示用にそのまま描画する値。
// JSONの文字列はその内容を、数値や真偽値は元の表記を保持する。nullは空文字列になる。
type Text string

// UnmarshalJSON はJSONの任意の値をTextとして受け取る。
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		// 数値は浮動小数点を経由させず "10.00" のような表記を崩さない
		*t = Text(b)
	}
	return nil
}

// Notification は list-webhook-notifications が返す通知1件。
type Notification struct {
	Timestamp     Text `json:"timestamp"`
	OrderID       Text `json:"orderId"`
	TransactionID Text `json:"transactionId"`
	OrderStatus   Text `json:"orderStatus"`
	Amount        Text `json:"amount"`
}

// Row は通知テーブルの1行。セルの順序は固定。
type Row struct {
	Timestamp     string
	OrderID       string
	TransactionID string
	OrderStatus   string
	Amount        string
}

// Cells は行のセルを表示順に返す。
func (r Row) Cells() []string {
	return []string{r.Timestamp, r.OrderID, r.TransactionID, r.OrderStatus, r.Amount}
}

func toRow(n Notification) Row {
	return Row{
		Timestamp:     string(n.Timestamp),
		OrderID:       string(n.OrderID),
		TransactionID: string(n.TransactionID),
		OrderStatus:   string(n.OrderStatus),
		Amount:        string(n.Amount),
	}
}

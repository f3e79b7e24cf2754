package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/money"
)

var (
	ErrMalformedMessage = errors.New("malformed ledger message")
	ErrTransport        = errors.New("ledger transport failure")
)

// Message instructs the wallet side to debit Value from the wallet owned by
// Email. It travels as {"email": "...", "value": 30.00}.
type Message struct {
	Email string
	Value decimal.Decimal
}

func NewDebit(email string, value decimal.Decimal) Message {
	return Message{Email: email, Value: value}
}

type wireMessage struct {
	Email string      `json:"email"`
	Value json.Number `json:"value"`
}

type inboundMessage struct {
	Email *string          `json:"email"`
	Value *decimal.Decimal `json:"value"`
}

// Encode renders the value as a bare JSON number with at least two decimals.
func (m Message) Encode() ([]byte, error) {
	if strings.TrimSpace(m.Email) == "" {
		return nil, fmt.Errorf("%w: email is empty", ErrMalformedMessage)
	}
	return json.Marshal(wireMessage{Email: m.Email, Value: json.Number(formatValue(m.Value))})
}

func formatValue(v decimal.Decimal) string {
	if v.Exponent() >= -2 {
		return v.StringFixed(2)
	}
	return v.String()
}

// Decode accepts the value as a JSON number or a quoted decimal string. Values
// a NUMERIC(14,2) wallet balance cannot hold are malformed.
func Decode(payload []byte) (Message, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return Message{}, fmt.Errorf("%w: empty payload", ErrMalformedMessage)
	}

	var in inboundMessage
	if err := json.Unmarshal(payload, &in); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if in.Email == nil || strings.TrimSpace(*in.Email) == "" {
		return Message{}, fmt.Errorf("%w: email is required", ErrMalformedMessage)
	}
	if in.Value == nil {
		return Message{}, fmt.Errorf("%w: value is required", ErrMalformedMessage)
	}
	if err := money.Check(*in.Value); err != nil {
		return Message{}, fmt.Errorf("%w: value: %v", ErrMalformedMessage, err)
	}

	return Message{Email: *in.Email, Value: *in.Value}, nil
}

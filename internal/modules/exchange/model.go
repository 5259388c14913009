package exchange

import (
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rate is one append-only exchange rate fact. Rows are never updated.
type Rate struct {
	ID            uuid.UUID       `json:"id"`
	FromCurrency  money.Currency  `json:"from_currency"`
	ToCurrency    money.Currency  `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate types.Date      `json:"effective_date"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Pair identifies a conversion direction.
type Pair struct {
	From money.Currency
	To   money.Currency
}

// USDMXN is the pair the cost ledger converts with.
var USDMXN = Pair{From: money.USD, To: money.MXN}

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 365
)

// RecordRateRequest is the payload for appending a rate.
type RecordRateRequest struct {
	FromCurrency  string          `json:"from_currency"`
	ToCurrency    string          `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate types.Date      `json:"effective_date"`
}

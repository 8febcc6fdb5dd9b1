package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the textual purchase date format used by file sources (DD/MM/YYYY).
const DateLayout = "02/01/2006"

// Record is one purchase transaction.
// Latitude/Longitude are attributes of State, duplicated on every row of that state.
type Record struct {
	Product         string          `json:"product,omitempty"`
	ProductCategory string          `json:"product_category"`
	Price           decimal.Decimal `json:"price"`
	Freight         decimal.Decimal `json:"freight"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	Salesperson     string          `json:"salesperson"`
	State           string          `json:"state"`
	Rating          int             `json:"rating,omitempty"`
	PaymentType     string          `json:"payment_type,omitempty"`
	Installments    int             `json:"installments,omitempty"`
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
}

// Dataset is the immutable snapshot produced once by a loader.
// Records must not be modified after load; filters return new slices.
type Dataset struct {
	Records  []Record
	LoadedAt time.Time

	// Source is the file path or redacted DSN the records came from.
	Source string

	// Fingerprint is the SHA-256 of the raw source content: the record set version.
	Fingerprint string
}

// Len returns the number of records in the snapshot.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Salespeople returns the distinct salesperson names in first-appearance order.
func (d *Dataset) Salespeople() []string {
	if d == nil {
		return []string{}
	}
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, r := range d.Records {
		if _, ok := seen[r.Salesperson]; ok {
			continue
		}
		seen[r.Salesperson] = struct{}{}
		names = append(names, r.Salesperson)
	}
	return names
}

// NewDate returns the UTC midnight for the given calendar date.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a DD/MM/YYYY purchase date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

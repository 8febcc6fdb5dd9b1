package file

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aevon-lab/salesdash/internal/core/sales"
	"github.com/shopspring/decimal"
)

// column lists the accepted keys for one record field: the Portuguese dataset
// header first, then the snake_case alias.
type column struct {
	keys     []string
	required bool
}

var (
	colProduct      = column{keys: []string{"Produto", "product"}}
	colCategory     = column{keys: []string{"Categoria do Produto", "product_category"}, required: true}
	colPrice        = column{keys: []string{"Preço", "price"}, required: true}
	colFreight      = column{keys: []string{"Frete", "freight"}}
	colPurchaseDate = column{keys: []string{"Data da Compra", "purchase_date"}, required: true}
	colSalesperson  = column{keys: []string{"Vendedor", "salesperson"}, required: true}
	colState        = column{keys: []string{"Local da compra", "state"}, required: true}
	colRating       = column{keys: []string{"Avaliação da compra", "rating"}}
	colPaymentType  = column{keys: []string{"Tipo de pagamento", "payment_type"}}
	colInstallments = column{keys: []string{"Quantidade de parcelas", "installments"}}
	colLatitude     = column{keys: []string{"lat", "latitude"}, required: true}
	colLongitude    = column{keys: []string{"lon", "longitude"}, required: true}
)

// row is one raw record keyed by normalized header.
type row map[string]interface{}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// lookup returns the first present key of the column and its value.
func (r row) lookup(c column) (string, interface{}, bool) {
	for _, k := range c.keys {
		if v, ok := r[normalizeKey(k)]; ok && v != nil {
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			return k, v, true
		}
	}
	return c.keys[0], nil, false
}

// recordParser builds records for one source, tagging errors with the source name.
type recordParser struct {
	source string
}

func (p recordParser) parse(index int, r row) (sales.Record, error) {
	var (
		rec sales.Record
		err error
	)

	if rec.ProductCategory, err = p.str(index, r, colCategory); err != nil {
		return rec, err
	}
	if rec.Salesperson, err = p.str(index, r, colSalesperson); err != nil {
		return rec, err
	}
	if rec.State, err = p.str(index, r, colState); err != nil {
		return rec, err
	}
	if rec.Product, err = p.str(index, r, colProduct); err != nil {
		return rec, err
	}
	if rec.PaymentType, err = p.str(index, r, colPaymentType); err != nil {
		return rec, err
	}

	if rec.Price, err = p.decimal(index, r, colPrice); err != nil {
		return rec, err
	}
	if rec.Price.IsNegative() {
		return rec, sales.NewFieldError(p.source, index, colPrice.keys[0], fmt.Errorf("price must be >= 0, got %s", rec.Price))
	}
	if rec.Freight, err = p.decimal(index, r, colFreight); err != nil {
		return rec, err
	}

	if rec.PurchaseDate, err = p.date(index, r, colPurchaseDate); err != nil {
		return rec, err
	}

	if rec.Latitude, err = p.float(index, r, colLatitude); err != nil {
		return rec, err
	}
	if rec.Longitude, err = p.float(index, r, colLongitude); err != nil {
		return rec, err
	}
	if rec.Rating, err = p.int(index, r, colRating); err != nil {
		return rec, err
	}
	if rec.Installments, err = p.int(index, r, colInstallments); err != nil {
		return rec, err
	}

	return rec, nil
}

func (p recordParser) missing(index int, c column) error {
	return sales.NewFieldError(p.source, index, c.keys[0], fmt.Errorf("required field is missing"))
}

func (p recordParser) str(index int, r row, c column) (string, error) {
	key, v, ok := r.lookup(c)
	if !ok {
		if c.required {
			return "", p.missing(index, c)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case json.Number:
		return val.String(), nil
	default:
		return "", sales.NewFieldError(p.source, index, key, fmt.Errorf("expected string, got %T", v))
	}
}

// decimal converts JSON numbers and numeric strings. Missing optional fields are zero.
func (p recordParser) decimal(index int, r row, c column) (decimal.Decimal, error) {
	key, v, ok := r.lookup(c)
	if !ok {
		if c.required {
			return decimal.Zero, p.missing(index, c)
		}
		return decimal.Zero, nil
	}

	var (
		d   decimal.Decimal
		err error
	)
	switch val := v.(type) {
	case json.Number:
		d, err = decimal.NewFromString(val.String())
	case string:
		d, err = parseDecimalText(val)
	case float64:
		d = decimal.NewFromFloat(val)
	default:
		err = fmt.Errorf("expected number, got %T", v)
	}
	if err != nil {
		return decimal.Zero, sales.NewFieldError(p.source, index, key, err)
	}
	return d, nil
}

func (p recordParser) float(index int, r row, c column) (float64, error) {
	d, err := p.decimal(index, r, c)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

func (p recordParser) int(index int, r row, c column) (int, error) {
	key, v, ok := r.lookup(c)
	if !ok {
		if c.required {
			return 0, p.missing(index, c)
		}
		return 0, nil
	}

	var s string
	switch val := v.(type) {
	case json.Number:
		s = val.String()
	case string:
		s = strings.TrimSpace(val)
	case float64:
		if val != math.Trunc(val) {
			return 0, sales.NewFieldError(p.source, index, key, fmt.Errorf("expected integer, got %v", val))
		}
		return int(val), nil
	default:
		return 0, sales.NewFieldError(p.source, index, key, fmt.Errorf("expected integer, got %T", v))
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, sales.NewFieldError(p.source, index, key, err)
	}
	return n, nil
}

func (p recordParser) date(index int, r row, c column) (time.Time, error) {
	key, v, ok := r.lookup(c)
	if !ok {
		return time.Time{}, p.missing(index, c)
	}
	s, isString := v.(string)
	if !isString {
		return time.Time{}, sales.NewFieldError(p.source, index, key, fmt.Errorf("expected %s date string, got %T", sales.DateLayout, v))
	}
	t, err := sales.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, sales.NewFieldError(p.source, index, key, err)
	}
	return t, nil
}

// parseDecimalText accepts "12.5" and "12,5". A comma is read as the decimal
// separator only when it is the sole separator in the value.
func parseDecimalText(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		if strings.Count(s, ",") > 1 || strings.Contains(s, ".") {
			return decimal.Zero, fmt.Errorf("ambiguous decimal separator in %q", s)
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

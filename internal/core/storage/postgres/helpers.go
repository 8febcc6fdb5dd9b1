package postgres

import (
	"database/sql"
	"fmt"
	"hash"
	"time"

	"github.com/aevon-lab/salesdash/internal/core/sales"
	"github.com/shopspring/decimal"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecordRow scans one sales row. Nullable descriptive columns become
// zero values; the returned id is only used for fingerprinting.
func scanRecordRow(row scanner) (int64, sales.Record, error) {
	var (
		id           int64
		rec          sales.Record
		product      sql.NullString
		freight      decimal.NullDecimal
		purchaseDate time.Time
		rating       sql.NullInt64
		paymentType  sql.NullString
		installments sql.NullInt64
	)

	err := row.Scan(
		&id,
		&product,
		&rec.ProductCategory,
		&rec.Price,
		&freight,
		&purchaseDate,
		&rec.Salesperson,
		&rec.State,
		&rating,
		&paymentType,
		&installments,
		&rec.Latitude,
		&rec.Longitude,
	)
	if err != nil {
		return 0, rec, fmt.Errorf("failed to scan sales row: %w", err)
	}

	rec.Product = product.String
	rec.Freight = freight.Decimal
	rec.PurchaseDate = sales.NewDate(purchaseDate.Year(), purchaseDate.Month(), purchaseDate.Day())
	rec.Rating = int(rating.Int64)
	rec.PaymentType = paymentType.String
	rec.Installments = int(installments.Int64)

	return id, rec, nil
}

// insertArgs flattens a record into queryInsertSale parameters.
// Empty optional text columns and zero rating or installments are stored as NULL.
func insertArgs(rec sales.Record) []interface{} {
	return []interface{}{
		nullString(rec.Product),
		rec.ProductCategory,
		rec.Price,
		rec.Freight,
		rec.PurchaseDate,
		rec.Salesperson,
		rec.State,
		nullInt(rec.Rating),
		nullString(rec.PaymentType),
		nullInt(rec.Installments),
		rec.Latitude,
		rec.Longitude,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

// writeFingerprintRow feeds a canonical rendering of one row into h so the
// dataset fingerprint changes whenever any stored value does.
func writeFingerprintRow(h hash.Hash, id int64, rec sales.Record) {
	fmt.Fprintf(h, "%d|%s|%s|%s|%s|%s|%s|%s|%d|%s|%d|%g|%g\n",
		id,
		rec.Product,
		rec.ProductCategory,
		rec.Price.String(),
		rec.Freight.String(),
		rec.PurchaseDate.Format(sales.DateLayout),
		rec.Salesperson,
		rec.State,
		rec.Rating,
		rec.PaymentType,
		rec.Installments,
		rec.Latitude,
		rec.Longitude,
	)
}

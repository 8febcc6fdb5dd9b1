package postgres

// SQL for the sales table. Column order must match scanRecordRow.

const (
	// querySelectSales reads the full record set in insertion order.
	querySelectSales = `
		SELECT
			id, product, product_category, price, freight, purchase_date,
			salesperson, state, rating, payment_type, installments,
			latitude, longitude
		FROM sales
		ORDER BY id ASC
	`

	// queryInsertSale appends one record. Used by Import.
	queryInsertSale = `
		INSERT INTO sales (
			product, product_category, price, freight, purchase_date,
			salesperson, state, rating, payment_type, installments,
			latitude, longitude
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	queryTruncateSales = `TRUNCATE TABLE sales RESTART IDENTITY`

	queryTableExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'sales'
		)
	`
)

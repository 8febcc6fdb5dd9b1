package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aevon-lab/salesdash/internal/core/sales"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAdapter_Load(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	loadedAt := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	adapter.nowFn = func() time.Time { return loadedAt }

	mock.ExpectQuery(regexp.QuoteMeta(querySelectSales)).
		WillReturnRows(sqlmock.NewRows(salesRowColumns()).
			AddRow(int64(1), "Modelagem preditiva", "livros", "92.45", "5.61",
				time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				"Pedro Gomes", "SP", int64(4), "cartao_credito", int64(3), -22.19, -48.79).
			AddRow(int64(2), nil, "moveis", "250.10", nil,
				time.Date(2021, 12, 31, 0, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
				"Beatriz Moraes", "RJ", nil, nil, nil, -22.25, -42.66),
		).RowsWillBeClosed()

	ds, err := adapter.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, SourceName, ds.Source)
	require.Equal(t, loadedAt, ds.LoadedAt)
	require.Len(t, ds.Fingerprint, 64)

	first := ds.Records[0]
	require.Equal(t, "Modelagem preditiva", first.Product)
	require.True(t, decimal.RequireFromString("92.45").Equal(first.Price))
	require.True(t, decimal.RequireFromString("5.61").Equal(first.Freight))
	require.Equal(t, sales.NewDate(2020, time.January, 1), first.PurchaseDate)
	require.Equal(t, 4, first.Rating)
	require.Equal(t, 3, first.Installments)

	second := ds.Records[1]
	require.Empty(t, second.Product)
	require.True(t, second.Freight.IsZero())
	require.Equal(t, sales.NewDate(2021, time.December, 31), second.PurchaseDate)
	require.Zero(t, second.Rating)
	require.Empty(t, second.PaymentType)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_LoadEmptyTable(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(querySelectSales)).
		WillReturnRows(sqlmock.NewRows(salesRowColumns()))

	ds, err := adapter.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ds.Records)
	require.Zero(t, ds.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_LoadFingerprintTracksRows(t *testing.T) {
	load := func(price string) string {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(querySelectSales)).
			WillReturnRows(sqlmock.NewRows(salesRowColumns()).
				AddRow(int64(1), nil, "livros", price, nil, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
					"Ana", "SP", nil, nil, nil, 0.0, 0.0))

		ds, err := adapter.Load(context.Background())
		require.NoError(t, err)
		return ds.Fingerprint
	}

	require.Equal(t, load("10.00"), load("10.00"))
	require.NotEqual(t, load("10.00"), load("10.01"))
}

func TestAdapter_LoadErrors(t *testing.T) {
	queryErr := errors.New("connection reset")

	tests := []struct {
		name     string
		setup    func(mock sqlmock.Sqlmock)
		wantRow  int
		wantText string
	}{
		{
			name: "query failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(querySelectSales)).WillReturnError(queryErr)
			},
			wantText: "failed to query sales",
		},
		{
			name: "negative price",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(querySelectSales)).
					WillReturnRows(sqlmock.NewRows(salesRowColumns()).
						AddRow(int64(7), nil, "livros", "-1.00", nil, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
							"Ana", "SP", nil, nil, nil, 0.0, 0.0))
			},
			wantRow:  1,
			wantText: "price must be >= 0",
		},
		{
			name: "unscannable price",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(querySelectSales)).
					WillReturnRows(sqlmock.NewRows(salesRowColumns()).
						AddRow(int64(1), nil, "livros", "abc", nil, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
							"Ana", "SP", nil, nil, nil, 0.0, 0.0))
			},
			wantRow:  1,
			wantText: "failed to scan sales row",
		},
		{
			name: "row iteration failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(querySelectSales)).
					WillReturnRows(sqlmock.NewRows(salesRowColumns()).
						AddRow(int64(1), nil, "livros", "1.00", nil, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
							"Ana", "SP", nil, nil, nil, 0.0, 0.0).
						RowError(0, queryErr))
			},
			wantText: "error iterating sales",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()

			tc.setup(mock)

			_, err := adapter.Load(context.Background())
			require.ErrorIs(t, err, sales.ErrDataFormat)
			require.ErrorContains(t, err, tc.wantText)

			var dfe *sales.DataFormatError
			require.ErrorAs(t, err, &dfe)
			require.Equal(t, SourceName, dfe.Source)
			require.Equal(t, tc.wantRow, dfe.Row)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_Import(t *testing.T) {
	records := []sales.Record{
		{ProductCategory: "livros", Price: decimal.NewFromInt(10), PurchaseDate: sales.NewDate(2020, 1, 1), Salesperson: "Ana", State: "SP"},
		{ProductCategory: "moveis", Price: decimal.NewFromInt(20), PurchaseDate: sales.NewDate(2021, 2, 1), Salesperson: "Bruno", State: "RJ"},
	}

	t.Run("commits", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(queryTruncateSales)).WillReturnResult(sqlmock.NewResult(0, 0))
		for range records {
			mock.ExpectExec(regexp.QuoteMeta(queryInsertSale)).
				WithArgs(insertArgMatchers()...).
				WillReturnResult(sqlmock.NewResult(1, 1))
		}
		mock.ExpectCommit()

		require.NoError(t, adapter.Import(context.Background(), records))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on insert failure", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		insertErr := errors.New("check constraint violated")

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(queryTruncateSales)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(queryInsertSale)).
			WithArgs(insertArgMatchers()...).
			WillReturnError(insertErr)
		mock.ExpectRollback()

		err := adapter.Import(context.Background(), records)
		require.ErrorIs(t, err, insertErr)
		require.ErrorContains(t, err, "failed to insert sale 1")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdapter_ImportKeepsPrecisionAndNulls(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	rec := sales.Record{
		ProductCategory: "livros",
		Price:           decimal.RequireFromString("12.345"),
		PurchaseDate:    sales.NewDate(2022, 3, 15),
		Salesperson:     "Ana",
		State:           "SP",
		Installments:    3,
		Latitude:        -22.19,
		Longitude:       -48.79,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryTruncateSales)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(queryInsertSale)).
		WithArgs(nil, "livros", "12.345", "0", rec.PurchaseDate, "Ana", "SP", nil, nil, int64(3), -22.19, -48.79).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, adapter.Import(context.Background(), []sales.Record{rec}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewAdapter_MissingTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryTableExists)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = NewAdapter(db)
	require.ErrorContains(t, err, "did you run migrations")
	require.ErrorContains(t, err, "sales table does not exist")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewAdapter_PreparesSelect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryTableExists)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectPrepare(regexp.QuoteMeta(querySelectSales))

	adapter, err := NewAdapter(db)
	require.NoError(t, err)
	require.NotNil(t, adapter.stmtSelect)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_CloseReturnsDBCloseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dbCloseErr := errors.New("db close failed")

	mock.ExpectPrepare(regexp.QuoteMeta(querySelectSales)).WillBeClosed()
	stmtSelect, err := db.Prepare(querySelectSales)
	require.NoError(t, err)

	mock.ExpectClose().WillReturnError(dbCloseErr)

	adapter := &Adapter{db: db, stmtSelect: stmtSelect, nowFn: time.Now}

	err = adapter.Close()
	require.ErrorContains(t, err, "failed to close database")
	require.ErrorIs(t, err, dbCloseErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	adapter := &Adapter{
		db:         db,
		stmtSelect: mustPrepareStmt(t, db, mock, querySelectSales),
		nowFn:      time.Now,
	}

	return adapter, mock, db
}

func mustPrepareStmt(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock, query string) *sql.Stmt {
	t.Helper()

	mock.ExpectPrepare(regexp.QuoteMeta(query))
	stmt, err := db.Prepare(query)
	require.NoError(t, err)

	return stmt
}

func insertArgMatchers() []driver.Value {
	args := make([]driver.Value, 12)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func salesRowColumns() []string {
	return []string{
		"id",
		"product",
		"product_category",
		"price",
		"freight",
		"purchase_date",
		"salesperson",
		"state",
		"rating",
		"payment_type",
		"installments",
		"latitude",
		"longitude",
	}
}

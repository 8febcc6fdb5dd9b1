package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aevon-lab/salesdash/internal/core/sales"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const jsonDataset = `[
  {"Produto": "Modelagem preditiva", "Categoria do Produto": "livros", "Preço": 92.45, "Frete": 5.6096,
   "Data da Compra": "01/01/2020", "Vendedor": "Pedro Gomes", "Local da compra": "SP",
   "Avaliação da compra": 4, "Tipo de pagamento": "cartao_credito", "Quantidade de parcelas": 3,
   "lat": -22.19, "lon": -48.79},
  {"product": "Cadeira de escritório", "product_category": "moveis", "price": "250.10",
   "purchase_date": "31/12/2021", "salesperson": "Beatriz Moraes", "state": "RJ",
   "latitude": -22.25, "longitude": -42.66}
]`

const csvDataset = "Produto,Categoria do Produto,Preço,Frete,Data da Compra,Vendedor,Local da compra,Avaliação da compra,Tipo de pagamento,Quantidade de parcelas,lat,lon\n" +
	"Bola de vôlei,esporte e lazer,39.90,2.10,15/03/2022,Thiago Silva,BA,5,boleto,1,-13.29,-41.71\n" +
	"Guarda roupas,moveis,1200.00,60.00,07/08/2023,Juliana Costa,MG,,cartao_credito,10,-18.10,-44.38\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew_FormatFromExtension(t *testing.T) {
	require.Equal(t, FormatJSON, New("vendas.json").Format())
	require.Equal(t, FormatCSV, New("vendas.CSV").Format())
	require.Equal(t, FormatJSON, New("vendas").Format())
}

func TestSource_LoadJSON(t *testing.T) {
	path := writeFile(t, "vendas.json", jsonDataset)
	src := New(path)
	src.nowFn = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, path, ds.Source)
	require.Len(t, ds.Fingerprint, 64)
	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), ds.LoadedAt)

	first := ds.Records[0]
	require.Equal(t, "Modelagem preditiva", first.Product)
	require.Equal(t, "livros", first.ProductCategory)
	require.True(t, decimal.RequireFromString("92.45").Equal(first.Price))
	require.True(t, decimal.RequireFromString("5.6096").Equal(first.Freight))
	require.Equal(t, sales.NewDate(2020, time.January, 1), first.PurchaseDate)
	require.Equal(t, "Pedro Gomes", first.Salesperson)
	require.Equal(t, "SP", first.State)
	require.Equal(t, 4, first.Rating)
	require.Equal(t, "cartao_credito", first.PaymentType)
	require.Equal(t, 3, first.Installments)
	require.Equal(t, -22.19, first.Latitude)
	require.Equal(t, -48.79, first.Longitude)

	second := ds.Records[1]
	require.Equal(t, "moveis", second.ProductCategory)
	require.True(t, decimal.RequireFromString("250.10").Equal(second.Price))
	require.True(t, second.Freight.IsZero())
	require.Equal(t, sales.NewDate(2021, time.December, 31), second.PurchaseDate)
	require.Equal(t, "RJ", second.State)
}

func TestSource_LoadCSV(t *testing.T) {
	path := writeFile(t, "vendas.csv", "\ufeff"+csvDataset)

	ds, err := New(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	require.Equal(t, "esporte e lazer", ds.Records[0].ProductCategory)
	require.True(t, decimal.RequireFromString("39.90").Equal(ds.Records[0].Price))
	require.Equal(t, sales.NewDate(2022, time.March, 15), ds.Records[0].PurchaseDate)
	require.Equal(t, 5, ds.Records[0].Rating)

	require.Equal(t, "Juliana Costa", ds.Records[1].Salesperson)
	require.Equal(t, 0, ds.Records[1].Rating)
	require.Equal(t, 10, ds.Records[1].Installments)
	require.Equal(t, -44.38, ds.Records[1].Longitude)
}

func TestSource_LoadFingerprintTracksContent(t *testing.T) {
	a, err := New(writeFile(t, "a.json", jsonDataset)).Load(context.Background())
	require.NoError(t, err)
	b, err := New(writeFile(t, "b.json", jsonDataset)).Load(context.Background())
	require.NoError(t, err)
	c, err := New(writeFile(t, "c.csv", csvDataset)).Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, a.Fingerprint, b.Fingerprint)
	require.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestSource_LoadEmptyArray(t *testing.T) {
	ds, err := New(writeFile(t, "empty.json", "[]")).Load(context.Background())
	require.NoError(t, err)
	require.Zero(t, ds.Len())
}

func TestSource_LoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantRow  int
		wantText string
	}{
		{
			name:     "not an array",
			file:     "bad.json",
			content:  `{"Preço": 1}`,
			wantText: "expected a JSON array of records, got {",
		},
		{
			name:     "null document",
			file:     "bad.json",
			content:  `null`,
			wantText: "expected a JSON array of records, got null",
		},
		{
			name:     "scalar document",
			file:     "bad.json",
			content:  `42`,
			wantText: "expected a JSON array of records",
		},
		{
			name:     "empty document",
			file:     "bad.json",
			content:  ``,
			wantText: "decoding JSON array",
		},
		{
			name:     "array of scalars",
			file:     "bad.json",
			content:  `[1]`,
			wantText: "decoding JSON array element 1",
		},
		{
			name:     "trailing data",
			file:     "bad.json",
			content:  `[] []`,
			wantText: "unexpected data",
		},
		{
			name:     "bad date format",
			file:     "bad.json",
			content:  `[{"Categoria do Produto": "livros", "Preço": 1, "Data da Compra": "2020-01-31", "Vendedor": "a", "Local da compra": "SP", "lat": 0, "lon": 0}]`,
			wantRow:  1,
			wantText: "Data da Compra",
		},
		{
			name:     "impossible date",
			file:     "bad.json",
			content:  `[{"Categoria do Produto": "livros", "Preço": 1, "Data da Compra": "31/02/2020", "Vendedor": "a", "Local da compra": "SP", "lat": 0, "lon": 0}]`,
			wantRow:  1,
			wantText: "Data da Compra",
		},
		{
			name:     "missing price",
			file:     "bad.json",
			content:  `[{"Categoria do Produto": "livros", "Data da Compra": "01/01/2020", "Vendedor": "a", "Local da compra": "SP", "lat": 0, "lon": 0}]`,
			wantRow:  1,
			wantText: "required field is missing",
		},
		{
			name:     "negative price",
			file:     "bad.json",
			content:  `[{"Categoria do Produto": "livros", "Preço": -3, "Data da Compra": "01/01/2020", "Vendedor": "a", "Local da compra": "SP", "lat": 0, "lon": 0}]`,
			wantRow:  1,
			wantText: "price must be >= 0",
		},
		{
			name:     "non numeric price",
			file:     "bad.json",
			content:  `[{"Categoria do Produto": "livros", "Preço": true, "Data da Compra": "01/01/2020", "Vendedor": "a", "Local da compra": "SP", "lat": 0, "lon": 0}]`,
			wantRow:  1,
			wantText: "expected number",
		},
		{
			name:     "fractional rating",
			file:     "bad.json",
			content:  `[{"Categoria do Produto": "livros", "Preço": 1, "Data da Compra": "01/01/2020", "Vendedor": "a", "Local da compra": "SP", "lat": 0, "lon": 0, "Avaliação da compra": 4.5}]`,
			wantRow:  1,
			wantText: "Avaliação da compra",
		},
		{
			name:     "thousands separator",
			file:     "bad.json",
			content:  `[{"Categoria do Produto": "livros", "Preço": "1,234.50", "Data da Compra": "01/01/2020", "Vendedor": "a", "Local da compra": "SP", "lat": 0, "lon": 0}]`,
			wantRow:  1,
			wantText: "ambiguous decimal separator",
		},
		{
			name:     "repeated comma",
			file:     "bad.json",
			content:  `[{"Categoria do Produto": "livros", "Preço": "1,234,5", "Data da Compra": "01/01/2020", "Vendedor": "a", "Local da compra": "SP", "lat": 0, "lon": 0}]`,
			wantRow:  1,
			wantText: "ambiguous decimal separator",
		},
		{
			name:     "csv without header",
			file:     "bad.csv",
			content:  "",
			wantText: "missing header row",
		},
		{
			name:     "csv ragged row",
			file:     "bad.csv",
			content:  "Preço,Vendedor\n1\n",
			wantText: "reading CSV",
		},
		{
			name:     "csv bad second row",
			file:     "bad.csv",
			content:  "Categoria do Produto,Preço,Data da Compra,Vendedor,Local da compra,lat,lon\nlivros,1,01/01/2020,a,SP,0,0\nlivros,abc,01/01/2020,a,SP,0,0\n",
			wantRow:  2,
			wantText: "Preço",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, tc.file, tc.content)

			_, err := New(path).Load(context.Background())
			require.Error(t, err)
			require.ErrorIs(t, err, sales.ErrDataFormat)
			require.ErrorContains(t, err, tc.wantText)

			var dfe *sales.DataFormatError
			require.ErrorAs(t, err, &dfe)
			require.Equal(t, path, dfe.Source)
			require.Equal(t, tc.wantRow, dfe.Row)
		})
	}
}

func TestSource_LoadDecimalComma(t *testing.T) {
	content := `[{"Categoria do Produto": "livros", "Preço": "12,5", "Frete": " 0,75 ", "Data da Compra": "01/01/2020", "Vendedor": "a", "Local da compra": "SP", "lat": "-22,19", "lon": 0}]`

	ds, err := New(writeFile(t, "comma.json", content)).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)

	rec := ds.Records[0]
	require.True(t, decimal.RequireFromString("12.5").Equal(rec.Price), rec.Price.String())
	require.True(t, decimal.RequireFromString("0.75").Equal(rec.Freight), rec.Freight.String())
	require.Equal(t, -22.19, rec.Latitude)
}

func TestSource_LoadMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	require.ErrorIs(t, err, sales.ErrDataFormat)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSource_LoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(writeFile(t, "vendas.json", jsonDataset)).Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

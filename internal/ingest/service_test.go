package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/chainopt/internal/domain"
)

type fakeProductRepo struct {
	bySKU   map[string]*domain.Product
	lookups int
}

func (f *fakeProductRepo) List(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, int, error) {
	return nil, 0, nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeProductRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	f.lookups++
	if p, ok := f.bySKU[sku]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProductRepo) Create(ctx context.Context, product *domain.Product) error { return nil }

func (f *fakeProductRepo) UpdateStock(ctx context.Context, id int64, stock int) error { return nil }

type fakeSalesRepo struct {
	records []domain.SalesRecord
}

func (f *fakeSalesRepo) History(ctx context.Context, productID int64, since time.Time) ([]domain.SalesRecord, error) {
	return nil, nil
}

func (f *fakeSalesRepo) BulkInsert(ctx context.Context, records []domain.SalesRecord) (int, error) {
	f.records = append(f.records, records...)
	return len(records), nil
}

func newTestService() (*Service, *fakeProductRepo, *fakeSalesRepo) {
	products := &fakeProductRepo{
		bySKU: map[string]*domain.Product{
			"SKU-A": {ID: 1, SKU: "SKU-A"},
			"SKU-B": {ID: 2, SKU: "SKU-B"},
		},
	}
	sales := &fakeSalesRepo{}
	return NewService(nil, products, sales), products, sales
}

func TestParseCSV(t *testing.T) {
	svc, _, _ := newTestService()

	csvData := `sku,date,quantity,price,promotion,competitor_price
SKU-A,2026-01-02,14,9.50,1,10.20
SKU-B,2026-01-02,3,25.00,,
SKU-A,2026-01-03,7.0,9.50,false,`

	records, err := svc.parseCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, int64(1), first.ProductID)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), first.SoldOn)
	assert.Equal(t, 14, first.Quantity)
	assert.Equal(t, 9.5, first.Price)
	assert.True(t, first.Promotion)
	assert.Equal(t, 10.2, first.CompetitorPrice)

	assert.Equal(t, int64(2), records[1].ProductID)
	assert.False(t, records[1].Promotion)
	assert.Equal(t, 0.0, records[1].CompetitorPrice)

	// Float-formatted quantities are truncated to whole units.
	assert.Equal(t, 7, records[2].Quantity)
}

func TestParseCSVCachesProductLookups(t *testing.T) {
	svc, products, _ := newTestService()

	csvData := `sku,date,quantity,price
SKU-A,2026-01-01,1,5
SKU-A,2026-01-02,2,5
SKU-A,2026-01-03,3,5`

	_, err := svc.parseCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, products.lookups)
}

func TestParseCSVHeaderValidation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name string
		data string
	}{
		{"missing quantity", "sku,date,price\nSKU-A,2026-01-01,5"},
		{"missing sku", "date,quantity,price\n2026-01-01,1,5"},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.parseCSV(context.Background(), strings.NewReader(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseCSVRejectsBadRows(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name string
		data string
	}{
		{"unknown sku", "sku,date,quantity,price\nSKU-X,2026-01-01,1,5"},
		{"empty sku", "sku,date,quantity,price\n,2026-01-01,1,5"},
		{"bad date", "sku,date,quantity,price\nSKU-A,01/02/2026,1,5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.parseCSV(context.Background(), strings.NewReader(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseCSVHonorsCancellation(t *testing.T) {
	svc, _, _ := newTestService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	csvData := "sku,date,quantity,price\nSKU-A,2026-01-01,1,5"
	_, err := svc.parseCSV(ctx, strings.NewReader(csvData))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLastRun(t *testing.T) {
	svc, _, _ := newTestService()
	assert.Nil(t, svc.LastRun())

	run := &Run{Files: 2, RowsInserted: 10}
	_, err := svc.finish(run, nil)
	require.NoError(t, err)

	got := svc.LastRun()
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Files)
	assert.Equal(t, 10, got.RowsInserted)
	assert.False(t, got.FinishedAt.IsZero())

	// LastRun returns a copy, not the stored pointer.
	got.Files = 99
	assert.Equal(t, 2, svc.LastRun().Files)
}

// internal/ingest/service.go
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/andresuchdata/chainopt/internal/repository"
	"github.com/rs/zerolog/log"
)

// Run captures the outcome of one import invocation.
type Run struct {
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Files        int       `json:"files"`
	RowsParsed   int       `json:"rows_parsed"`
	RowsInserted int       `json:"rows_inserted"`
	RowsSkipped  int       `json:"rows_skipped"`
	Error        string    `json:"error,omitempty"`
}

// Service imports daily sales CSV exports from a Drive folder into the
// sales history tables.
type Service struct {
	drive    *DriveService
	products repository.ProductRepository
	sales    repository.SalesRepository

	mu      sync.Mutex
	lastRun *Run
}

func NewService(drive *DriveService, products repository.ProductRepository, sales repository.SalesRepository) *Service {
	return &Service{
		drive:    drive,
		products: products,
		sales:    sales,
	}
}

// LastRun reports the most recent import outcome, nil before the first run.
func (s *Service) LastRun() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	run := *s.lastRun
	return &run
}

// SyncFolder imports every CSV in the folder. Per-file failures abort the
// run; already-imported rows are skipped by the unique constraint.
func (s *Service) SyncFolder(ctx context.Context, folderID string) (*Run, error) {
	run := &Run{StartedAt: time.Now()}

	files, err := s.drive.ListFiles(folderID)
	if err != nil {
		return s.finish(run, err)
	}

	for _, f := range files {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			continue
		}
		run.Files++

		parsed, inserted, err := s.IngestFile(ctx, f.ID)
		if err != nil {
			return s.finish(run, fmt.Errorf("file %s: %w", f.Name, err))
		}
		run.RowsParsed += parsed
		run.RowsInserted += inserted
		run.RowsSkipped += parsed - inserted
	}

	return s.finish(run, nil)
}

// IngestFile downloads one CSV and bulk-inserts its rows. It returns the
// parsed and inserted row counts.
func (s *Service) IngestFile(ctx context.Context, fileID string) (int, int, error) {
	pr, pw := io.Pipe()
	go func() {
		err := s.drive.DownloadFile(fileID, pw)
		pw.CloseWithError(err)
	}()

	records, err := s.parseCSV(ctx, pr)
	if err != nil {
		return 0, 0, err
	}

	inserted, err := s.sales.BulkInsert(ctx, records)
	if err != nil {
		return len(records), 0, err
	}

	log.Info().
		Str("file_id", fileID).
		Int("rows_parsed", len(records)).
		Int("rows_inserted", inserted).
		Msg("sales file ingested")
	return len(records), inserted, nil
}

func (s *Service) parseCSV(ctx context.Context, r io.Reader) ([]domain.SalesRecord, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range []string{"sku", "date", "quantity", "price"} {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	// Product lookups repeat across rows of the same file.
	productIDs := make(map[string]int64)

	var records []domain.SalesRecord
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row, err := s.parseRow(ctx, record, colMap, productIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to parse row: %w", err)
		}
		records = append(records, row)
	}

	return records, nil
}

func (s *Service) parseRow(ctx context.Context, record []string, colMap map[string]int, productIDs map[string]int64) (domain.SalesRecord, error) {
	getValue := func(colName string) string {
		if idx, ok := colMap[colName]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	getFloat := func(colName string) float64 {
		val := getValue(colName)
		if val == "" {
			return 0
		}
		f, _ := strconv.ParseFloat(val, 64)
		return f
	}

	getInt := func(colName string) int {
		// Handle float strings like "3.0"
		return int(getFloat(colName))
	}

	getBool := func(colName string) bool {
		val := getValue(colName)
		return val == "1" || strings.EqualFold(val, "true")
	}

	var rec domain.SalesRecord

	sku := getValue("sku")
	if sku == "" {
		return rec, fmt.Errorf("empty sku")
	}

	productID, ok := productIDs[sku]
	if !ok {
		product, err := s.products.GetBySKU(ctx, sku)
		if err != nil {
			return rec, err
		}
		productID = product.ID
		productIDs[sku] = productID
	}

	soldOn, err := time.Parse("2006-01-02", getValue("date"))
	if err != nil {
		return rec, fmt.Errorf("invalid date %q: %w", getValue("date"), err)
	}

	rec = domain.SalesRecord{
		ProductID:       productID,
		SoldOn:          soldOn,
		Quantity:        getInt("quantity"),
		Price:           getFloat("price"),
		Promotion:       getBool("promotion"),
		CompetitorPrice: getFloat("competitor_price"),
		EconomicIndex:   getFloat("economic_index"),
		WeatherFactor:   getFloat("weather_factor"),
	}
	return rec, nil
}

func (s *Service) finish(run *Run, err error) (*Run, error) {
	run.FinishedAt = time.Now()
	if err != nil {
		run.Error = err.Error()
	}

	s.mu.Lock()
	s.lastRun = run
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Int("files", run.Files).Msg("sales import failed")
		return run, err
	}
	log.Info().
		Int("files", run.Files).
		Int("rows_inserted", run.RowsInserted).
		Int("rows_skipped", run.RowsSkipped).
		Msg("sales import completed")
	return run, nil
}

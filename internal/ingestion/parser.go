package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/stock-service/internal/domain/models"
	"github.com/guttosm/stock-service/internal/storage"
)

// expectedHeaders enforces strict column ordering for price files.
var expectedHeaders = []string{"Symbol", "Price", "TradedAt"}

// tradedAtLayouts are tried in order; values without a zone are UTC.
var tradedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseAndPersistFile opens, validates, parses, and persists one file in batches.
// It fails on:
//   - header not matching expected order/length
//   - any malformed row (the whole file is rejected)
//   - unrecoverable I/O errors
//
// Rows already flushed before a failure stay in the table; the file is not
// recorded in the ingestion log, so the next run deletes them and loads the
// file again.
func parseAndPersistFile(ctx context.Context, path string, repo storage.TickerRepository, batch int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	source := filepath.Base(path)

	r := csv.NewReader(f)
	r.Comma = ';'
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // checked explicitly for a better message

	// Validate headers strictly.
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return 0, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, h := range header {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		if !strings.EqualFold(h, expectedHeaders[i]) {
			return 0, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)
		}
	}

	buf := make([]models.TickerPrice, 0, batch)
	lineNumber := 1 // header already read

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := repo.InsertPricesBatch(ctx, buf); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}

	total := 0

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		if len(rec) != len(expectedHeaders) {
			return 0, fmt.Errorf("invalid column count on line %d: expected %d got %d", lineNumber, len(expectedHeaders), len(rec))
		}

		p, err := recordToPrice(rec)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		p.SourceFile = source

		buf = append(buf, p)
		total++
		if len(buf) >= batch {
			if err := flush(); err != nil {
				return 0, fmt.Errorf("flush batch ending line %d: %w", lineNumber, err)
			}
		}
	}

	// Final flush
	if err := flush(); err != nil {
		return 0, fmt.Errorf("final flush: %w", err)
	}

	return total, nil
}

// recordToPrice converts one validated record into a TickerPrice.
//
//	0 Symbol   → upper-cased, required
//	1 Price    → float, comma or dot decimal separator, must be >= 0
//	2 TradedAt → RFC 3339 or "YYYY-MM-DD HH:MM:SS" (UTC)
func recordToPrice(rec []string) (models.TickerPrice, error) {
	var p models.TickerPrice

	p.Symbol = strings.ToUpper(strings.TrimSpace(rec[0]))
	if p.Symbol == "" {
		return p, errors.New("empty Symbol")
	}

	s := strings.ReplaceAll(strings.TrimSpace(rec[1]), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return p, fmt.Errorf("invalid Price %q", rec[1])
	}
	if v < 0 {
		return p, fmt.Errorf("negative Price %q", rec[1])
	}
	p.Price = v

	ts, err := parseTradedAt(strings.TrimSpace(rec[2]))
	if err != nil {
		return p, err
	}
	p.TradedAt = ts

	return p, nil
}

func parseTradedAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty TradedAt")
	}
	for _, layout := range tradedAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid TradedAt %q", s)
}

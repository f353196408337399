package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/stock-service/internal/cache"
	"github.com/guttosm/stock-service/internal/domain/models"
	"github.com/guttosm/stock-service/internal/logger"
	"github.com/guttosm/stock-service/internal/storage"
)

// ErrInvalidWindow is returned when the time window key is not a positive number of minutes.
var ErrInvalidWindow = errors.New("invalid time window")

// StockService defines business logic for serving ticker prices.
type StockService interface {
	// StockTickerPrices returns the latest price per symbol traded within the
	// last window minutes. window is the raw key, e.g. "5".
	StockTickerPrices(ctx context.Context, window string) (models.TickerPrices, error)
}

type stockService struct {
	repo  storage.TickerRepository
	cache cache.PriceCache
	now   func() time.Time
}

// NewStockService builds the service. c may be nil, in which case every call
// goes to the repository.
func NewStockService(repo storage.TickerRepository, c cache.PriceCache) StockService {
	return &stockService{repo: repo, cache: c, now: time.Now}
}

func (s *stockService) StockTickerPrices(ctx context.Context, window string) (models.TickerPrices, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(window))
	if err != nil || minutes <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWindow, window)
	}

	log := logger.Component("stock_service")

	if s.cache != nil {
		prices, ok, err := s.cache.Get(ctx, minutes)
		if err != nil {
			log.Warn().Err(err).Int("minutes", minutes).Msg("cache read failed")
		} else if ok {
			log.Debug().Int("minutes", minutes).Msg("cache hit")
			return prices, nil
		}
	}

	since := s.now().Add(-time.Duration(minutes) * time.Minute)
	rows, err := s.repo.LatestPricesSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch ticker prices: %w", err)
	}
	prices := models.FromObservations(rows)

	if s.cache != nil {
		if err := s.cache.Set(ctx, minutes, prices); err != nil {
			log.Warn().Err(err).Int("minutes", minutes).Msg("cache write failed")
		}
	}

	return prices, nil
}

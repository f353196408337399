package models

import "time"

// TickerPrice is a single price observation for a stock symbol.
//
// Rows are loaded by the ingestion pipeline from CSV files with the header
// "Symbol;Price;TradedAt" and stored in the ticker_prices table.
type TickerPrice struct {
	Symbol     string    `json:"symbol" example:"AAPL"`
	Price      float64   `json:"price" example:"150.2"`
	TradedAt   time.Time `json:"traded_at"`
	SourceFile string    `json:"-"`
}

// TickerPrices maps a symbol to its latest price inside a time window.
//
// This is the payload of GET /stock/{min}, e.g. {"AAPL": 150.2, "MSFT": 410.5}.
type TickerPrices map[string]float64

// FromObservations keeps the most recent price per symbol.
func FromObservations(obs []TickerPrice) TickerPrices {
	out := make(TickerPrices, len(obs))
	latest := make(map[string]time.Time, len(obs))
	for _, o := range obs {
		if t, ok := latest[o.Symbol]; ok && !o.TradedAt.After(t) {
			continue
		}
		latest[o.Symbol] = o.TradedAt
		out[o.Symbol] = o.Price
	}
	return out
}

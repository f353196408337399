package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/guttosm/stock-service/internal/domain/dto"
	"github.com/guttosm/stock-service/internal/service"
	"github.com/guttosm/stock-service/internal/validation"
)

// maxWindowMinutes caps the window at one day.
const maxWindowMinutes = 1440

// stockWindowSchema validates the {min} path segment of /stock/{min}.
var stockWindowSchema = validation.MustSchema("stock_window",
	validation.Field{
		Name:     "min",
		In:       validation.InPath,
		Type:     validation.Integer,
		Required: true,
		Rules:    "min=1,max=" + strconv.Itoa(maxWindowMinutes),
	},
)

// StockHandler serves ticker prices.
type StockHandler struct {
	svc service.StockService
}

func NewStockHandler(svc service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// Routes returns the route definitions served by this handler.
func (h *StockHandler) Routes() []Route {
	return []Route{
		{
			Method:  http.MethodGet,
			Path:    "/stock/{min}",
			Stages:  []*validation.Schema{stockWindowSchema},
			Message: dto.MessageFetched,
			Handle:  h.TickerPrices,
		},
	}
}

// TickerPrices godoc
// @Summary      Get stock ticker prices
// @Description  Returns the latest price per symbol traded within the last {min} minutes
// @Tags         stock
// @Produce      json
// @Param        min  path      int  true  "Time window in minutes (1-1440)" example(5)
// @Success      200  {object}  dto.Envelope{data=models.TickerPrices}  "fetched"
// @Failure      400  {object}  dto.Envelope{error=[]validation.FieldError}  "Invalid window"
// @Failure      500  {object}  dto.Envelope  "Data source failure"
// @Failure      504  {object}  dto.Envelope  "Deadline exceeded"
// @Router       /stock/{min} [get]
func (h *StockHandler) TickerPrices(ctx context.Context, values validation.Values) (any, error) {
	return h.svc.StockTickerPrices(ctx, strconv.Itoa(values.Int("min")))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stock-service/internal/domain/dto"
	"github.com/guttosm/stock-service/internal/validation"
)

var (
	pathStage = validation.MustSchema("path",
		validation.Field{Name: "min", In: validation.InPath, Type: validation.Integer, Required: true, Rules: "min=1"},
	)
	queryStage = validation.MustSchema("query",
		validation.Field{Name: "symbol", In: validation.InQuery, Type: validation.String, Required: true, Rules: "uppercase"},
	)
	bodyStage = validation.MustSchema("body",
		validation.Field{Name: "limit", In: validation.InBody, Type: validation.Integer, Required: true},
		validation.Field{Name: "note", In: validation.InBody, Type: validation.String},
	)
)

func newValidatedRouter(handlerCalls *int, seen *validation.Values, stages ...*validation.Schema) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := make([]gin.HandlerFunc, 0, len(stages)+1)
	for _, s := range stages {
		chain = append(chain, Validate(s))
	}
	chain = append(chain, func(c *gin.Context) {
		*handlerCalls++
		*seen = ValidatedValues(c)
		c.JSON(http.StatusOK, dto.Success(dto.MessageFetched, nil))
	})
	r.POST("/stock/:min", chain...)
	r.POST("/stock/", chain...)
	return r
}

func TestValidate_Stages(t *testing.T) {
	cases := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		wantCalls  int
		wantFields []string
		assert     func(t *testing.T, v validation.Values)
	}{
		{
			name:       "all stages pass",
			target:     "/stock/5?symbol=AAPL",
			body:       `{"limit": 3, "note": "x"}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			assert: func(t *testing.T, v validation.Values) {
				if v.Int("min") != 5 || v.String("symbol") != "AAPL" || v.Int("limit") != 3 || v.String("note") != "x" {
					t.Fatalf("unexpected values %v", v)
				}
			},
		},
		{
			name:       "empty path param rejected at first stage",
			target:     "/stock/?symbol=bad",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"min"},
		},
		{
			name:       "second stage stops the chain",
			target:     "/stock/5?symbol=aapl",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"symbol"},
		},
		{
			name:       "malformed body",
			target:     "/stock/5?symbol=AAPL",
			body:       `{"limit":`,
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"body"},
		},
		{
			name:       "missing body field",
			target:     "/stock/5?symbol=AAPL",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"limit"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int
			var seen validation.Values
			r := newValidatedRouter(&calls, &seen, pathStage, queryStage, bodyStage)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tc.target, strings.NewReader(tc.body)))

			if w.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
			if calls != tc.wantCalls {
				t.Fatalf("handler calls=%d, want %d", calls, tc.wantCalls)
			}
			if tc.assert != nil {
				tc.assert(t, seen)
			}
			if len(tc.wantFields) == 0 {
				return
			}

			env := decodeEnvelope(t, w.Body.Bytes())
			if env.Status != dto.StatusFail || env.Message != dto.MessageFailed {
				t.Fatalf("unexpected envelope %+v", env)
			}
			list, ok := env.Error.([]any)
			if !ok || len(list) != len(tc.wantFields) {
				t.Fatalf("unexpected error detail %#v", env.Error)
			}
			for i, f := range tc.wantFields {
				item, _ := list[i].(map[string]any)
				if item["field"] != f {
					t.Fatalf("failure %d field=%v, want %s", i, item["field"], f)
				}
			}
		})
	}
}

func TestValidatedValues_Empty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if v := ValidatedValues(c); v == nil || len(v) != 0 {
		t.Fatalf("expected empty values, got %v", v)
	}
}

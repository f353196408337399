package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stock-service/internal/domain/dto"
	"github.com/guttosm/stock-service/internal/logger"
	"github.com/guttosm/stock-service/internal/validation"
)

const (
	// ValidatedKey holds the validation.Values accumulated by Validate stages.
	ValidatedKey = "validated"

	bodyKey      = "json_body"
	maxBodyBytes = 50 << 20
)

// Validate runs one validation stage for schema.
//
// Behavior:
//   - Extracts path params, query string and (only when the schema reads it)
//     the JSON body of the request.
//   - On failure aborts with 400 and a fail envelope listing every failed field.
//   - On success merges the coerced values into the request under ValidatedKey
//     and continues the chain.
//
// Several stages can be chained; the first failing one stops the request.
func Validate(schema *validation.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		values, err := validateRequest(c, schema)
		if err != nil {
			logger.L().Debug().
				Str("request_id", GetRequestID(c)).
				Str("schema", schema.Name()).
				Err(err).
				Msg("validation failed")
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.Fail(dto.MessageFailed, err))
			return
		}

		c.Set(ValidatedKey, ValidatedValues(c).Merge(values))
		c.Next()
	}
}

// ValidatedValues returns the values validated so far for this request.
func ValidatedValues(c *gin.Context) validation.Values {
	if v, ok := c.Get(ValidatedKey); ok {
		if vals, ok := v.(validation.Values); ok {
			return vals
		}
	}
	return validation.Values{}
}

func validateRequest(c *gin.Context, schema *validation.Schema) (validation.Values, error) {
	in := validation.Input{
		Path:  make(map[string]string, len(c.Params)),
		Query: c.Request.URL.Query(),
	}
	for _, p := range c.Params {
		in.Path[p.Key] = p.Value
	}

	if schema.Reads(validation.InBody) {
		body, err := jsonBody(c)
		if err != nil {
			return nil, validation.Errors{{Field: "body", In: validation.InBody, Reason: err.Error()}}
		}
		in.Body = body
	}

	return validation.Validate(schema, in)
}

// jsonBody decodes the request body once per request and caches it so that
// later stages and the handler can read it again.
func jsonBody(c *gin.Context) (map[string]any, error) {
	if v, ok := c.Get(bodyKey); ok {
		m, _ := v.(map[string]any)
		return m, nil
	}

	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		c.Set(bodyKey, map[string]any(nil))
		return nil, nil
	}

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.New("is unreadable or too large")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var m map[string]any
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, errors.New("must be a JSON object")
		}
	}
	c.Set(bodyKey, m)
	return m, nil
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stock-service/internal/domain/dto"
	"github.com/guttosm/stock-service/internal/logger"
	"github.com/guttosm/stock-service/internal/middleware"
	"github.com/guttosm/stock-service/internal/service"
	"github.com/guttosm/stock-service/internal/validation"
)

// HandleFunc is the business part of a route. It receives the request
// context and the values produced by the route's validation stages, and
// returns the payload of the success envelope.
type HandleFunc func(ctx context.Context, values validation.Values) (any, error)

// Route declares one endpoint.
//
// Path uses {name} for named segments, e.g. "/stock/{min}". Stages run in
// order before Handle; the first failing stage answers 400 and Handle is
// never called. Message is the success envelope message (default "fetched").
type Route struct {
	Method  string
	Path    string
	Stages  []*validation.Schema
	Message string
	Handle  HandleFunc
}

var errInternal = errors.New("internal server error")

// Register mounts routes on r.
//
// It fails before registering anything when a path is malformed or when two
// routes share the same method and pattern. Conflicts with routes already
// mounted on r are reported as errors too.
//
// A path ending in a named segment is also mounted with that segment empty
// ("/stock/{min}" also answers "/stock/"), so a blank value is rejected by
// validation instead of falling through to not found.
func Register(r gin.IRouter, routes []Route) (err error) {
	type mount struct {
		method, path string
		route        Route
	}

	var mounts []mount
	seen := make(map[string]string)

	for _, rt := range routes {
		if rt.Handle == nil {
			return fmt.Errorf("route %s %s: nil handler", rt.Method, rt.Path)
		}
		method := strings.ToUpper(strings.TrimSpace(rt.Method))
		if method == "" {
			return fmt.Errorf("route %s: empty method", rt.Path)
		}

		paths, err := ginPaths(rt.Path)
		if err != nil {
			return fmt.Errorf("route %s %s: %w", method, rt.Path, err)
		}
		for _, p := range paths {
			key := method + " " + p
			if prev, dup := seen[key]; dup {
				return fmt.Errorf("duplicate route %s %s (conflicts with %s)", method, rt.Path, prev)
			}
			seen[key] = rt.Path
			mounts = append(mounts, mount{method: method, path: p, route: rt})
		}
	}

	// gin panics on conflicting registrations; surface that as a startup error.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("register routes: %v", rec)
		}
	}()

	for _, m := range mounts {
		chain := make([]gin.HandlerFunc, 0, len(m.route.Stages)+1)
		for _, s := range m.route.Stages {
			chain = append(chain, middleware.Validate(s))
		}
		chain = append(chain, serve(m.route))
		r.Handle(m.method, m.path, chain...)
	}
	return nil
}

// ginPaths converts "/a/{b}" into gin's "/a/:b" and adds the empty-segment
// variant when the pattern ends in a named segment.
func ginPaths(pattern string) ([]string, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, errors.New("path must start with /")
	}

	segs := strings.Split(pattern, "/")
	names := make(map[string]struct{})
	lastNamed := false
	for i, s := range segs {
		lastNamed = false
		if !strings.HasPrefix(s, "{") && !strings.HasSuffix(s, "}") {
			if strings.ContainsAny(s, "{}:*") {
				return nil, fmt.Errorf("invalid segment %q", s)
			}
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
		if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' || name == "" || strings.ContainsAny(name, "{}:*/") {
			return nil, fmt.Errorf("invalid named segment %q", s)
		}
		if _, dup := names[name]; dup {
			return nil, fmt.Errorf("named segment %q used twice", name)
		}
		names[name] = struct{}{}
		segs[i] = ":" + name
		lastNamed = i == len(segs)-1
	}

	full := strings.Join(segs, "/")
	if !lastNamed {
		return []string{full}, nil
	}
	return []string{full, strings.Join(segs[:len(segs)-1], "/") + "/"}, nil
}

// serve is the per-request boundary around a route handler: whatever Handle
// does, exactly one envelope is written.
func serve(rt Route) gin.HandlerFunc {
	message := rt.Message
	if message == "" {
		message = dto.MessageFetched
	}

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.L().Error().
					Str("request_id", middleware.GetRequestID(c)).
					Str("route", rt.Method+" "+rt.Path).
					Str("panic", fmt.Sprintf("%v", rec)).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Fail(dto.MessageFailed, errInternal))
				}
			}
		}()

		data, err := rt.Handle(c.Request.Context(), middleware.ValidatedValues(c))
		if err != nil {
			status := statusFor(err)
			_ = c.Error(err)
			c.AbortWithStatusJSON(status, dto.Fail(dto.MessageFailed, err))
			return
		}

		c.JSON(http.StatusOK, dto.Success(message, data))
	}
}

// statusFor maps a handler error to an HTTP status.
func statusFor(err error) int {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs), errors.Is(err, service.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches parsed tags.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Input is the raw, unvalidated request data a stage sees.
type Input struct {
	Path  map[string]string
	Query map[string][]string
	Body  map[string]any
}

func (in Input) lookup(loc Location, name string) (any, bool) {
	switch loc {
	case InPath:
		v, ok := in.Path[name]
		if !ok || strings.TrimSpace(v) == "" {
			return nil, false
		}
		return v, true
	case InQuery:
		vs, ok := in.Query[name]
		if !ok || len(vs) == 0 || strings.TrimSpace(vs[0]) == "" {
			return nil, false
		}
		return vs[0], true
	case InBody:
		v, ok := in.Body[name]
		if !ok || v == nil {
			return nil, false
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

// Validate checks input against schema and returns the coerced values.
//
// Every field is checked; on failure the returned error is an Errors value
// listing each failed field with its reason. Optional fields that are absent
// are simply left out of the returned Values.
func Validate(schema *Schema, input Input) (Values, error) {
	values := make(Values, len(schema.fields))
	var failed Errors

	for _, f := range schema.fields {
		raw, ok := input.lookup(f.In, f.Name)
		if !ok {
			if f.Required {
				failed = append(failed, FieldError{Field: f.Name, In: f.In, Reason: "is required"})
			}
			continue
		}

		v, err := coerce(f.Type, raw)
		if err != nil {
			failed = append(failed, FieldError{Field: f.Name, In: f.In, Reason: err.Error()})
			continue
		}

		if reasons := check(schema, f, v); len(reasons) > 0 {
			for _, r := range reasons {
				failed = append(failed, FieldError{Field: f.Name, In: f.In, Reason: r})
			}
			continue
		}

		values[f.Name] = v
	}

	if len(failed) > 0 {
		return nil, failed
	}
	return values, nil
}

// coerce converts raw into the declared type. Strings come from path and
// query segments, native JSON types from a decoded body.
func coerce(t Type, raw any) (any, error) {
	switch t {
	case String:
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("must be a string")
		}
		return s, nil

	case Integer:
		switch v := raw.(type) {
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if errors.Is(err, strconv.ErrRange) {
				return nil, errors.New("is out of range")
			}
			if err != nil {
				return nil, errors.New("must be an integer")
			}
			return n, nil
		case float64:
			if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
				return nil, errors.New("must be an integer")
			}
			return int(v), nil
		}
		return nil, errors.New("must be an integer")

	case Number:
		switch v := raw.(type) {
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, errors.New("must be a number")
			}
			return n, nil
		case float64:
			return v, nil
		}
		return nil, errors.New("must be a number")

	case Boolean:
		switch v := raw.(type) {
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, errors.New("must be a boolean")
			}
			return b, nil
		case bool:
			return v, nil
		}
		return nil, errors.New("must be a boolean")
	}

	return nil, fmt.Errorf("unsupported type %q", t)
}

// check evaluates the pattern and the validator rules of f against v and
// returns one reason per violated constraint.
func check(schema *Schema, f Field, v any) []string {
	var reasons []string

	if re := schema.pattern(f); re != nil {
		if s, _ := v.(string); !re.MatchString(s) {
			reasons = append(reasons, fmt.Sprintf("must match pattern %s", re.String()))
		}
	}

	if f.Rules == "" {
		return reasons
	}

	err := validate.Var(v, f.Rules)
	if err == nil {
		return reasons
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return append(reasons, err.Error())
	}
	for _, fe := range verrs {
		reasons = append(reasons, describe(fe))
	}
	return reasons
}

// describe turns a validator failure into a client-facing reason.
func describe(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "len":
		if isString {
			return fmt.Sprintf("must be exactly %s characters", fe.Param())
		}
		return fmt.Sprintf("must equal %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "alpha":
		return "must contain only letters"
	case "alphanum":
		return "must contain only letters and digits"
	case "uppercase":
		return "must be uppercase"
	}

	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}

// checkRules evaluates rules once against the zero value of t so that an
// unknown tag is reported at schema construction instead of panicking
// during a request.
func checkRules(t Type, rules string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid rules %q: %v", rules, r)
		}
	}()

	var zero any
	switch t {
	case String:
		zero = ""
	case Integer:
		zero = 0
	case Number:
		zero = 0.0
	case Boolean:
		zero = false
	}
	_ = validate.Var(zero, rules)
	return nil
}

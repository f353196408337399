// Package validation checks raw request input against a declarative schema
// before a handler runs.
//
// A Schema lists the fields a request stage expects, where each one lives
// (path, query or body), its type and its constraints. Validate is a pure
// function: it never touches the schema and reports every failed field in a
// single Errors value instead of stopping at the first one.
package validation

import (
	"fmt"
	"regexp"
)

// Location is where a field is read from.
type Location string

const (
	InPath  Location = "path"
	InQuery Location = "query"
	InBody  Location = "body"
)

// Type is the declared type a raw value is coerced into.
type Type string

const (
	String  Type = "string"
	Integer Type = "integer"
	Number  Type = "number"
	Boolean Type = "boolean"
)

// Field declares a single input field.
//
// Rules are go-playground/validator tags evaluated against the coerced value,
// for example "min=1,max=1440" on an Integer or "oneof=1m 5m 1h" on a String.
// Pattern is a regular expression a String value must match.
type Field struct {
	Name     string
	In       Location
	Type     Type
	Required bool
	Rules    string
	Pattern  string
}

// Schema is an immutable, named set of fields. Build it with NewSchema so
// patterns are compiled once at startup.
type Schema struct {
	name     string
	fields   []Field
	patterns map[string]*regexp.Regexp
}

// NewSchema validates the field declarations and compiles their patterns.
func NewSchema(name string, fields ...Field) (*Schema, error) {
	s := &Schema{
		name:     name,
		fields:   append([]Field(nil), fields...),
		patterns: make(map[string]*regexp.Regexp),
	}

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s: field without name", name)
		}
		key := string(f.In) + ":" + f.Name
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %s in %s", name, f.Name, f.In)
		}
		seen[key] = struct{}{}

		switch f.In {
		case InPath, InQuery, InBody:
		default:
			return nil, fmt.Errorf("schema %s: field %s has unknown location %q", name, f.Name, f.In)
		}
		switch f.Type {
		case String, Integer, Number, Boolean:
		default:
			return nil, fmt.Errorf("schema %s: field %s has unknown type %q", name, f.Name, f.Type)
		}

		if f.Rules != "" {
			if err := checkRules(f.Type, f.Rules); err != nil {
				return nil, fmt.Errorf("schema %s: field %s: %w", name, f.Name, err)
			}
		}

		if f.Pattern != "" {
			if f.Type != String {
				return nil, fmt.Errorf("schema %s: field %s: pattern requires type string", name, f.Name)
			}
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, fmt.Errorf("schema %s: field %s: %w", name, f.Name, err)
			}
			s.patterns[key] = re
		}
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on an invalid declaration.
// Intended for package-level schema variables.
func MustSchema(name string, fields ...Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns a copy of the declared fields.
func (s *Schema) Fields() []Field { return append([]Field(nil), s.fields...) }

// Reads reports whether any field is read from loc.
func (s *Schema) Reads(loc Location) bool {
	for _, f := range s.fields {
		if f.In == loc {
			return true
		}
	}
	return false
}

func (s *Schema) pattern(f Field) *regexp.Regexp {
	return s.patterns[string(f.In)+":"+f.Name]
}

// Package filter parses and evaluates AIP-160 filter expressions over
// catalog fields, e.g. `rarity = "rare" AND value <= 500.0`.
package filter

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// FieldType describes a supported filter field type.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "int"
	FieldDouble FieldType = "double"
	FieldBool   FieldType = "bool"
)

// Fields defines filterable fields and their types.
type Fields map[string]FieldType

// CatalogFields are the fields exposed on catalog documents and candidates.
func CatalogFields() Fields {
	return Fields{
		"id":      FieldString,
		"name":    FieldString,
		"type":    FieldString,
		"rarity":  FieldString,
		"value":   FieldDouble,
		"weight":  FieldDouble,
		"curated": FieldBool,
	}
}

// Expr is a parsed filter. A nil Expr matches everything.
type Expr = expr.Expr

// Parse parses an AIP-160 filter expression for the provided fields.
// An empty expression returns nil.
func Parse(filterStr string, fields Fields) (*Expr, error) {
	if strings.TrimSpace(filterStr) == "" {
		return nil, nil
	}

	decls, err := declarations(fields)
	if err != nil {
		return nil, err
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}

	return filter.CheckedExpr.GetExpr(), nil
}

func declarations(fields Fields) (*filtering.Declarations, error) {
	decls := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	decls = append(decls, mixedNumericComparisons()...)
	for name, kind := range fields {
		switch kind {
		case FieldString:
			decls = append(decls, filtering.DeclareIdent(name, filtering.TypeString))
		case FieldInt:
			decls = append(decls, filtering.DeclareIdent(name, filtering.TypeInt))
		case FieldDouble:
			decls = append(decls, filtering.DeclareIdent(name, filtering.TypeFloat))
		case FieldBool:
			decls = append(decls, filtering.DeclareIdent(name, filtering.TypeBool))
		default:
			return nil, fmt.Errorf("unsupported field type for %s", name)
		}
	}

	return filtering.NewDeclarations(decls...)
}

// mixedNumericComparisons lets double fields compare against integer
// literals, so `value > 100` checks like `value > 100.0`.
func mixedNumericComparisons() []filtering.DeclarationOption {
	functions := []string{
		filtering.FunctionEquals,
		filtering.FunctionNotEquals,
		filtering.FunctionLessThan,
		filtering.FunctionLessEquals,
		filtering.FunctionGreaterThan,
		filtering.FunctionGreaterEquals,
	}
	opts := make([]filtering.DeclarationOption, 0, len(functions))
	for _, fn := range functions {
		opts = append(opts, filtering.DeclareFunction(fn,
			filtering.NewFunctionOverload(fn+"_double_int64", filtering.TypeBool, filtering.TypeFloat, filtering.TypeInt),
		))
	}
	return opts
}

package filter

import (
	"fmt"

	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Resolver returns a value for a field name.
type Resolver func(name string) (any, bool)

// Evaluate evaluates a parsed filter expression against a resolver.
func Evaluate(e *Expr, resolve Resolver) (bool, error) {
	if e == nil {
		return true, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return evalCall(kind.CallExpr, resolve)
	case *expr.Expr_IdentExpr:
		value, ok := resolve(kind.IdentExpr.Name)
		if !ok {
			return false, fmt.Errorf("unknown field: %s", kind.IdentExpr.Name)
		}
		b, ok := value.(bool)
		if !ok {
			return false, fmt.Errorf("field %s is not a bool", kind.IdentExpr.Name)
		}
		return b, nil
	default:
		return false, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func evalCall(call *expr.Expr_Call, resolve Resolver) (bool, error) {
	switch call.Function {
	case "_&&_", "AND", "FUZZY":
		return evalAnd(call.Args, resolve)
	case "_||_", "OR":
		return evalOr(call.Args, resolve)
	case "NOT", "-":
		return evalNot(call.Args, resolve)
	case "_==_", "=":
		return evalCompare(call.Args, resolve, "=")
	case "_!=_", "!=":
		return evalCompare(call.Args, resolve, "!=")
	case "_<_", "<":
		return evalCompare(call.Args, resolve, "<")
	case "_<=_", "<=":
		return evalCompare(call.Args, resolve, "<=")
	case "_>_", ">":
		return evalCompare(call.Args, resolve, ">")
	case "_>=_", ">=":
		return evalCompare(call.Args, resolve, ">=")
	default:
		return false, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func evalAnd(args []*expr.Expr, resolve Resolver) (bool, error) {
	for _, arg := range args {
		ok, err := Evaluate(arg, resolve)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func evalOr(args []*expr.Expr, resolve Resolver) (bool, error) {
	for _, arg := range args {
		ok, err := Evaluate(arg, resolve)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func evalNot(args []*expr.Expr, resolve Resolver) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("NOT requires 1 argument")
	}
	ok, err := Evaluate(args[0], resolve)
	return !ok, err
}

func evalCompare(args []*expr.Expr, resolve Resolver, op string) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return false, err
	}

	left, ok := resolve(field)
	if !ok {
		return false, fmt.Errorf("unknown field: %s", field)
	}

	right, err := extractValue(args[1])
	if err != nil {
		return false, err
	}

	cmp, err := compareValues(left, right)
	if err != nil {
		return false, err
	}

	switch op {
	case "=":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unsupported operator: %s", op)
	}
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	ident, ok := e.ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return "", fmt.Errorf("expected identifier, got %T", e.ExprKind)
	}
	return ident.IdentExpr.Name, nil
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	constant, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok || constant.ConstExpr == nil {
		return nil, fmt.Errorf("expected constant, got %T", e.ExprKind)
	}

	switch kind := constant.ConstExpr.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return float64(kind.Int64Value), nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

// compareValues orders left against right. Numbers are compared as float64.
func compareValues(left any, right any) (int, error) {
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return 0, fmt.Errorf("type mismatch: string vs %T", right)
		}
		switch {
		case l < r:
			return -1, nil
		case l > r:
			return 1, nil
		}
		return 0, nil
	case bool:
		r, ok := right.(bool)
		if !ok {
			return 0, fmt.Errorf("type mismatch: bool vs %T", right)
		}
		switch {
		case l == r:
			return 0, nil
		case !l:
			return -1, nil
		}
		return 1, nil
	}

	lf, ok := toFloat(left)
	if !ok {
		return 0, fmt.Errorf("unsupported value type: %T", left)
	}
	rf, ok := toFloat(right)
	if !ok {
		return 0, fmt.Errorf("type mismatch: number vs %T", right)
	}
	switch {
	case lf < rf:
		return -1, nil
	case lf > rf:
		return 1, nil
	}
	return 0, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

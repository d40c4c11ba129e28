package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Result is the outcome of one JSONPath expression.
type Result struct {
	Expr    string `json:"expr"`
	Value   string `json:"value,omitempty"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Apply evaluates JSONPath expressions against a record metadata document.
// Results keep the order of exprs.
//
// Policy:
// - A nil or empty document fails every expression.
// - A failing expression is reported in its Result; others still run.
func Apply(doc map[string]any, exprs []string) []Result {
	out := make([]Result, 0, len(exprs))
	if len(exprs) == 0 {
		return out
	}

	if len(doc) == 0 {
		for _, e := range exprs {
			expr := strings.TrimSpace(e)
			out = append(out, Result{
				Expr:    expr,
				Message: fmt.Sprintf("%s: record has no metadata", expr),
			})
		}
		return out
	}

	// jsonpath walks map[string]any / []any; give it a plain interface value.
	var root any = doc

	for _, e := range exprs {
		expr := strings.TrimSpace(e)
		if expr == "" {
			out = append(out, Result{Message: "empty jsonpath expression"})
			continue
		}

		val, err := jsonpath.Get(expr, root)
		if err != nil {
			out = append(out, Result{
				Expr:    expr,
				Message: fmt.Sprintf("%s: jsonpath error: %v", expr, err),
			})
			continue
		}

		if isEmptyValue(val) {
			out = append(out, Result{
				Expr:    expr,
				Message: fmt.Sprintf("%s: no value found", expr),
			})
			continue
		}

		s, err := toString(val)
		if err != nil {
			out = append(out, Result{
				Expr:    expr,
				Message: fmt.Sprintf("%s: cannot convert value to string: %v", expr, err),
			})
			continue
		}

		out = append(out, Result{Expr: expr, Value: s, Success: true})
	}

	return out
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func toString(v any) (string, error) {
	// Wildcards and filters return a slice; a single match is unwrapped.
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return "", fmt.Errorf("empty array")
		}
		if len(arr) == 1 {
			return toString(arr[0])
		}
		b, err := json.Marshal(arr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case float64, bool, int, int64, uint64:
		return fmt.Sprint(t), nil
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(t), nil
	}
}

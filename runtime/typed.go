package runtime

import "encoding/json"

// EvaluateAs evaluates an expression and converts the JSON-shaped result
// into T. Direct Go values that already are a T skip the JSON round trip.
func EvaluateAs[T any](e *Environment, code string) (T, error) {
	v, err := e.Evaluate(code)
	if err != nil {
		var zero T
		return zero, err
	}
	return convert[T](v)
}

// InvokeAs calls a named engine function and converts the JSON-shaped
// result into T.
func InvokeAs[T any](e *Environment, fn string, args ...any) (T, error) {
	v, err := e.Invoke(fn, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return convert[T](v)
}

func convert[T any](v any) (T, error) {
	var out T
	if v == nil {
		return out, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}

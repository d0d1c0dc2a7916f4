package domain

// Parsed carries a value decoded from generated text. When the text could not
// be used, Fallback is set, Value holds the local default and Reason says why.
type Parsed[T any] struct {
	Value    T      `json:"value"`
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason,omitempty"`
}

func ParsedValue[T any](v T) Parsed[T] {
	return Parsed[T]{Value: v}
}

func FallbackValue[T any](v T, reason string) Parsed[T] {
	return Parsed[T]{Value: v, Fallback: true, Reason: reason}
}

package helpers

// Ptr lets optional fields be set from a literal or a loop variable.
func Ptr[T any](val T) *T {
	return &val
}

// ValueOr dereferences val, falling back when it is nil.
func ValueOr[T any](val *T, fallback T) T {
	if val == nil {
		return fallback
	}
	return *val
}

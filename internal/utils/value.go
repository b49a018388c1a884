package utils

// Value dereferences p, substituting the zero value for nil. The backend's
// nullable fields arrive as pointers; this keeps display code free of nil
// checks.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

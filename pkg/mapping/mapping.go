package mapping

// MapViewModels converts a slice of domain entities into view models.
func MapViewModels[T, V any](entities []T, mapFunc func(T) V) []V {
	out := make([]V, 0, len(entities))
	for _, entity := range entities {
		out = append(out, mapFunc(entity))
	}
	return out
}

// Pointer returns a pointer to v.
func Pointer[T any](v T) *T {
	return &v
}

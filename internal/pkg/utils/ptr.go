// Package utils holds small shared test and conversion helpers.
package utils

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}

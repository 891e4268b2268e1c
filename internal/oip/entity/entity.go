// Package entity holds the request, response, and view types of the
// HTTP API. Persistence shapes live in the repository model package;
// services convert between the two.
package entity

import "fmt"

// ErrFieldRequired reports a missing request field. ginx renders it
// as a 400 response.
func ErrFieldRequired(name string) error {
	return fmt.Errorf("field %s is required", name)
}

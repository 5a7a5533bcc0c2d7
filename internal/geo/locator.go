// Package geo provides device geolocation sources.
package geo

import (
	"context"
	"errors"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
)

// ErrPermissionDenied is returned when the device refuses to share its position.
var ErrPermissionDenied = errors.New("location permission denied")

// Locator obtains the current device coordinates.
type Locator interface {
	Locate(ctx context.Context) (domain.Location, error)
}

// Static reports a fixed position, as configured for the device.
type Static struct {
	Location domain.Location
}

// Locate returns the configured position.
func (s Static) Locate(ctx context.Context) (domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return domain.Location{}, err
	}
	return s.Location, nil
}

// Denied always refuses, like a user dismissing the permission prompt.
type Denied struct{}

// Locate returns ErrPermissionDenied.
func (Denied) Locate(context.Context) (domain.Location, error) {
	return domain.Location{}, ErrPermissionDenied
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (domain.Location, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context) (domain.Location, error) {
	return f(ctx)
}

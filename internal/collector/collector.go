// Package collector reads battery-equipped devices from a device source.
// The production source is UPower on the system D-Bus; tests substitute
// an in-memory fake.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/Guliveer/powerbar/internal/kind"
	"github.com/Guliveer/powerbar/internal/models"
)

var (
	// ErrSourceUnavailable means the device source cannot be reached at all.
	ErrSourceUnavailable = errors.New("device source unavailable")

	// ErrQueryFailed means enumeration or a per-device property read failed.
	ErrQueryFailed = errors.New("device query failed")
)

// Source is the interface a device source must implement.
type Source interface {
	// Name returns a short identifier used in logs.
	Name() string

	// Devices enumerates the device handles currently known to the source,
	// in the order the source reports them.
	Devices(ctx context.Context) ([]string, error)

	// Type returns the raw numeric device type.
	Type(ctx context.Context, device string) (uint32, error)

	// Percentage returns the charge level in the range 0 to 100.
	Percentage(ctx context.Context, device string) (float64, error)

	// Model returns the model name, which may be empty.
	Model(ctx context.Context, device string) (string, error)

	// Subscribe returns a channel that receives a value whenever anything
	// about any device changes. The channel is closed when the source shuts
	// down. Notifications may be dropped when the consumer is busy.
	Subscribe(ctx context.Context) (<-chan struct{}, error)

	// IsAvailable checks if the source can be queried on this system.
	IsAvailable(ctx context.Context) bool
}

// Collect enumerates src and returns a snapshot of every device whose kind
// is in kinds, in enumeration order. The percentage is only read for
// matching devices. Any query error aborts the whole collection.
func Collect(ctx context.Context, src Source, kinds kind.Set) ([]models.DeviceSnapshot, error) {
	devices, err := src.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerating devices: %w", ErrQueryFailed, err)
	}

	var snapshots []models.DeviceSnapshot
	for _, dev := range devices {
		code, err := src.Type(ctx, dev)
		if err != nil {
			return nil, queryError(dev, "Type", err)
		}
		model, err := src.Model(ctx, dev)
		if err != nil {
			return nil, queryError(dev, "Model", err)
		}

		k := kind.FromCode(code)
		if !kinds.Contains(k) {
			continue
		}

		pct, err := src.Percentage(ctx, dev)
		if err != nil {
			return nil, queryError(dev, "Percentage", err)
		}
		snapshots = append(snapshots, models.DeviceSnapshot{
			Path:       dev,
			Kind:       k,
			Percentage: pct,
			Model:      model,
		})
	}
	return snapshots, nil
}

func queryError(device, property string, err error) error {
	return fmt.Errorf("%w: reading %s of %s: %w", ErrQueryFailed, property, device, err)
}

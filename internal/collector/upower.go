package collector

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	upowerService   = "org.freedesktop.UPower"
	upowerPath      = dbus.ObjectPath("/org/freedesktop/UPower")
	upowerInterface = "org.freedesktop.UPower"
	deviceInterface = "org.freedesktop.UPower.Device"

	// signalBuffer sizes the raw godbus signal channel. When it is full
	// godbus parks each further signal in its own goroutine until there is
	// room, so the channel must be drained promptly.
	signalBuffer = 16
)

// UPower reads devices from the UPower daemon over the system D-Bus.
// The connection is shared read-only by all callers.
type UPower struct {
	conn   *dbus.Conn
	logger *zap.Logger
}

var _ Source = (*UPower)(nil)

// NewUPower connects to the system bus.
// The logger parameter is used for debug logging. Pass nil for no logging.
func NewUPower(logger *zap.Logger) (*UPower, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to system bus: %w", ErrSourceUnavailable, err)
	}
	return NewUPowerWithConn(conn, logger), nil
}

// NewUPowerWithConn wraps an existing bus connection.
func NewUPowerWithConn(conn *dbus.Conn, logger *zap.Logger) *UPower {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UPower{conn: conn, logger: logger}
}

// Name returns the source identifier.
func (u *UPower) Name() string { return "upower" }

// Close releases the bus connection, which also closes any subscription.
func (u *UPower) Close() error { return u.conn.Close() }

// IsAvailable pings the UPower object, activating the daemon if needed.
func (u *UPower) IsAvailable(ctx context.Context) bool {
	err := u.conn.Object(upowerService, upowerPath).
		CallWithContext(ctx, "org.freedesktop.DBus.Peer.Ping", 0).Err
	if err != nil {
		u.logger.Debug("UPower not reachable", zap.Error(err))
		return false
	}
	return true
}

// Devices calls EnumerateDevices and returns the object paths as strings.
func (u *UPower) Devices(ctx context.Context) ([]string, error) {
	var paths []dbus.ObjectPath
	err := u.conn.Object(upowerService, upowerPath).
		CallWithContext(ctx, upowerInterface+".EnumerateDevices", 0).
		Store(&paths)
	if err != nil {
		return nil, err
	}

	devices := make([]string, len(paths))
	for i, p := range paths {
		devices[i] = string(p)
	}
	u.logger.Debug("Enumerated UPower devices", zap.Strings("devices", devices))
	return devices, nil
}

// Type returns the Device.Type property.
func (u *UPower) Type(ctx context.Context, device string) (uint32, error) {
	v, err := u.property(ctx, device, "Type")
	if err != nil {
		return 0, err
	}
	return variantAs[uint32](v)
}

// Percentage returns the Device.Percentage property.
func (u *UPower) Percentage(ctx context.Context, device string) (float64, error) {
	v, err := u.property(ctx, device, "Percentage")
	if err != nil {
		return 0, err
	}
	return variantAs[float64](v)
}

// Model returns the Device.Model property.
func (u *UPower) Model(ctx context.Context, device string) (string, error) {
	v, err := u.property(ctx, device, "Model")
	if err != nil {
		return "", err
	}
	return variantAs[string](v)
}

// Subscribe adds a match rule for every signal emitted by the UPower
// service, which covers DeviceAdded, DeviceRemoved and PropertiesChanged on
// any device. Bursts of signals collapse into a single pending notification.
func (u *UPower) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	if err := u.conn.AddMatchSignal(dbus.WithMatchSender(upowerService)); err != nil {
		return nil, fmt.Errorf("%w: subscribing to UPower signals: %w", ErrSourceUnavailable, err)
	}

	raw := make(chan *dbus.Signal, signalBuffer)
	u.conn.Signal(raw)

	return coalesce(ctx, raw, u.logger, func() { u.conn.RemoveSignal(raw) }), nil
}

// coalesce forwards raw signals as notifications, holding at most one
// pending value so a burst of signals yields a single notification. The
// returned channel is closed when ctx is done or raw is closed, after
// cleanup has run.
func coalesce(ctx context.Context, raw <-chan *dbus.Signal, logger *zap.Logger, cleanup func()) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		if cleanup != nil {
			defer cleanup()
		}
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-raw:
				if !ok {
					return
				}
				logger.Debug("UPower signal",
					zap.String("name", sig.Name),
					zap.String("path", string(sig.Path)))
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}

func (u *UPower) property(ctx context.Context, device, name string) (dbus.Variant, error) {
	var v dbus.Variant
	err := u.conn.Object(upowerService, dbus.ObjectPath(device)).
		CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, deviceInterface, name).
		Store(&v)
	return v, err
}

// variantAs unwraps a D-Bus variant into the expected Go type.
func variantAs[T any](v dbus.Variant) (T, error) {
	val, ok := v.Value().(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected D-Bus type %s", v.Signature())
	}
	return val, nil
}

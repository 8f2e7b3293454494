// Package device detects whether a ZSA keyboard is plugged in.
//
// Detection is by USB vendor ID only. A Monitor polls an Enumerator and
// reports connect and disconnect transitions.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// VendorZSA is the USB vendor ID of ZSA Technology Labs.
const VendorZSA uint16 = 0x3297

// DefaultPollInterval is how often a Monitor enumerates devices.
const DefaultPollInterval = 2 * time.Second

// ErrUnsupported is returned by enumerators that cannot work in this build.
var ErrUnsupported = errors.New("usb enumeration not supported in this build")

// Info identifies one attached USB device.
type Info struct {
	VendorID  uint16
	ProductID uint16
	Bus       int
	Address   int
}

func (i Info) String() string {
	return fmt.Sprintf("%04x:%04x (bus %d, address %d)", i.VendorID, i.ProductID, i.Bus, i.Address)
}

// Enumerator lists attached USB devices from one vendor.
type Enumerator interface {
	Enumerate(vendorID uint16) ([]Info, error)
}

// Config controls a Monitor.
type Config struct {
	VendorID     uint16
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Monitor tracks whether any device from the configured vendor is attached.
type Monitor struct {
	enum     Enumerator
	vendor   uint16
	interval time.Duration
	log      *slog.Logger

	mu        sync.Mutex
	connected bool
	devices   []Info
	onChange  []func(connected bool, devices []Info)
}

// NewMonitor returns a Monitor polling enum. Zero config fields take their
// defaults.
func NewMonitor(enum Enumerator, cfg Config) *Monitor {
	m := &Monitor{
		enum:     enum,
		vendor:   cfg.VendorID,
		interval: cfg.PollInterval,
		log:      cfg.Logger,
	}
	if m.vendor == 0 {
		m.vendor = VendorZSA
	}
	if m.interval <= 0 {
		m.interval = DefaultPollInterval
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	return m
}

// OnChange registers a callback invoked after each connect or disconnect.
// Callbacks must be registered before Run.
func (m *Monitor) OnChange(cb func(connected bool, devices []Info)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, cb)
}

// Connected reports the state seen by the most recent poll.
func (m *Monitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Devices returns the devices seen by the most recent poll.
func (m *Monitor) Devices() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Info(nil), m.devices...)
}

// Check enumerates once and returns whether a device is attached. It updates
// the monitor state without invoking callbacks.
func (m *Monitor) Check() (bool, error) {
	devices, err := m.enum.Enumerate(m.vendor)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	m.devices = devices
	m.connected = len(devices) > 0
	m.mu.Unlock()
	return len(devices) > 0, nil
}

// Run records the initial state, then polls until ctx is cancelled,
// invoking callbacks on every transition. Enumeration errors are logged and
// leave the state unchanged.
func (m *Monitor) Run(ctx context.Context) {
	if connected, err := m.Check(); err != nil {
		m.log.Warn("usb enumeration failed", "error", err)
	} else {
		m.log.Info("keyboard initially connected", "connected", connected, "vendor_id", fmt.Sprintf("0x%04x", m.vendor))
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	devices, err := m.enum.Enumerate(m.vendor)
	if err != nil {
		m.log.Debug("usb enumeration failed", "error", err)
		return
	}

	connected := len(devices) > 0
	m.mu.Lock()
	changed := connected != m.connected
	m.connected = connected
	m.devices = devices
	callbacks := append(([]func(bool, []Info))(nil), m.onChange...)
	m.mu.Unlock()

	if !changed {
		return
	}
	m.log.Info("keyboard connection changed", "connected", connected, "devices", len(devices))
	for _, cb := range callbacks {
		cb(connected, append([]Info(nil), devices...))
	}
}

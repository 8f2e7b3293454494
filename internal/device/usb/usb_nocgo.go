//go:build !cgo

// Package usb enumerates attached USB devices through libusb.
package usb

import "github.com/victorgalvez56/nvim-voice/internal/device"

// Enumerator is unavailable without cgo.
type Enumerator struct{}

// Enumerate always fails with device.ErrUnsupported.
func (Enumerator) Enumerate(uint16) ([]device.Info, error) {
	return nil, device.ErrUnsupported
}

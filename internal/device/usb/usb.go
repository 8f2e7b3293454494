//go:build cgo

// Package usb enumerates attached USB devices through libusb.
package usb

import (
	"github.com/google/gousb"

	"github.com/victorgalvez56/nvim-voice/internal/device"
)

// Enumerator lists devices through libusb. It satisfies device.Enumerator.
type Enumerator struct{}

// Enumerate returns the attached devices with the given vendor ID. Devices
// are matched on their descriptors and never opened.
func (Enumerator) Enumerate(vendorID uint16) ([]device.Info, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var found []device.Info
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Vendor == gousb.ID(vendorID) {
			found = append(found, device.Info{
				VendorID:  uint16(desc.Vendor),
				ProductID: uint16(desc.Product),
				Bus:       desc.Bus,
				Address:   desc.Address,
			})
		}
		return false
	})
	for _, d := range devs {
		d.Close()
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}

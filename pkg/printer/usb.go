package printer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/gousb"
)

// KnownPrinterVendors lists USB vendor ids of common receipt printer makers.
var KnownPrinterVendors = map[uint16]string{
	0x0416: "Winbond (POS-58/80)",
	0x0483: "STMicroelectronics",
	0x04b8: "Epson",
	0x0519: "Star Micronics",
	0x067b: "Prolific",
	0x0fe6: "ICS Advent",
	0x1504: "Bixolon",
	0x154f: "SNBC",
	0x1fc9: "NXP",
	0x20d1: "Rongta",
	0x28e9: "GD32 (Xprinter)",
	0x6868: "Xprinter",
}

// USBDevice describes a printer found on the bus.
type USBDevice struct {
	VendorID     uint16 `json:"vendor_id"`
	ProductID    uint16 `json:"product_id"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Product      string `json:"product,omitempty"`
	Description  string `json:"description"`
}

// USBConnector opens bulk OUT endpoints through libusb.
type USBConnector struct {
	once    sync.Once
	ctx     *gousb.Context
	vendors map[uint16]bool
}

// NewUSBConnector returns a connector accepting KnownPrinterVendors plus
// extraVendors. The libusb context is created on first use.
func NewUSBConnector(extraVendors ...uint16) *USBConnector {
	vendors := make(map[uint16]bool, len(KnownPrinterVendors)+len(extraVendors))
	for id := range KnownPrinterVendors {
		vendors[id] = true
	}
	for _, id := range extraVendors {
		vendors[id] = true
	}
	return &USBConnector{vendors: vendors}
}

// accepts is the device filter shared by discovery and Connect: an allowed
// vendor, or any device exposing a printer-class interface.
func (c *USBConnector) accepts(desc *gousb.DeviceDesc) bool {
	if c.vendors[uint16(desc.Vendor)] {
		return true
	}
	return hasPrinterClass(desc)
}

func (c *USBConnector) usb() *gousb.Context {
	c.once.Do(func() {
		c.ctx = gousb.NewContext()
	})
	return c.ctx
}

// Close releases the libusb context.
func (c *USBConnector) Close() error {
	if c.ctx == nil {
		return nil
	}
	return c.ctx.Close()
}

// Connect opens the device matching t.VendorID/t.ProductID, claims interface
// 0 and picks its first bulk OUT endpoint.
func (c *USBConnector) Connect(ctx context.Context, t Target) (Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dev, err := c.usb().OpenDeviceWithVIDPID(gousb.ID(t.VendorID), gousb.ID(t.ProductID))
	if err != nil {
		return nil, fmt.Errorf("open usb %04x:%04x: %w", t.VendorID, t.ProductID, err)
	}
	if dev == nil {
		return nil, fmt.Errorf("%w: usb %04x:%04x", ErrDeviceNotFound, t.VendorID, t.ProductID)
	}
	if !c.accepts(dev.Desc) {
		dev.Close()
		return nil, fmt.Errorf("%w: usb %04x:%04x", ErrVendorNotAllowed, t.VendorID, t.ProductID)
	}
	_ = dev.SetAutoDetach(true)

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("select usb configuration: %w", err)
	}
	intf, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		return nil, fmt.Errorf("claim usb interface: %w", err)
	}

	epNum := -1
	for _, desc := range intf.Setting.Endpoints {
		if desc.Direction == gousb.EndpointDirectionOut && desc.TransferType == gousb.TransferTypeBulk {
			if epNum == -1 || desc.Number < epNum {
				epNum = desc.Number
			}
		}
	}
	if epNum == -1 {
		intf.Close()
		cfg.Close()
		dev.Close()
		return nil, ErrNoWritableEndpoint
	}
	ep, err := intf.OutEndpoint(epNum)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		return nil, fmt.Errorf("open usb endpoint %d: %w", epNum, err)
	}
	return &usbLink{dev: dev, cfg: cfg, intf: intf, ep: ep}, nil
}

type usbLink struct {
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	ep   *gousb.OutEndpoint
}

func (l *usbLink) WritePacket(ctx context.Context, p []byte) error {
	n, err := l.ep.WriteContext(ctx, p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return fmt.Errorf("usb short write: %d of %d bytes", n, len(p))
	}
	return nil
}

func (l *usbLink) Close() error {
	l.intf.Close()
	if err := l.cfg.Close(); err != nil {
		l.dev.Close()
		return err
	}
	return l.dev.Close()
}

// DiscoverUSB lists attached devices that either belong to a known printer
// vendor or expose a printer-class interface.
func (c *USBConnector) DiscoverUSB() ([]USBDevice, error) {
	devs, err := c.usb().OpenDevices(c.accepts)
	var found []USBDevice
	for _, dev := range devs {
		d := USBDevice{
			VendorID:  uint16(dev.Desc.Vendor),
			ProductID: uint16(dev.Desc.Product),
		}
		d.Manufacturer, _ = dev.Manufacturer()
		d.Product, _ = dev.Product()
		d.Description = fmt.Sprintf("USB: %04X:%04X", d.VendorID, d.ProductID)
		if d.Manufacturer != "" || d.Product != "" {
			d.Description = fmt.Sprintf("USB: %s %s (%04X:%04X)", d.Manufacturer, d.Product, d.VendorID, d.ProductID)
		} else if name, ok := KnownPrinterVendors[d.VendorID]; ok {
			d.Description = fmt.Sprintf("USB: %s (%04X:%04X)", name, d.VendorID, d.ProductID)
		}
		found = append(found, d)
		dev.Close()
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].VendorID != found[j].VendorID {
			return found[i].VendorID < found[j].VendorID
		}
		return found[i].ProductID < found[j].ProductID
	})
	if err != nil && len(found) == 0 {
		return nil, fmt.Errorf("enumerate usb devices: %w", err)
	}
	return found, nil
}

func hasPrinterClass(desc *gousb.DeviceDesc) bool {
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

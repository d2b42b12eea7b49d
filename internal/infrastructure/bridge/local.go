package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/pkg/printer"
)

// ErrNoDevice is reported when neither libusb nor the kernel lp driver can reach a USB printer.
var ErrNoDevice = errors.New("bridge: usb printer not reachable")

var errNoPrinter = errors.New("bridge: no printer")

// Local is the in-process bridge. USB goes through the connection manager
// with a /dev/usb/lp* fallback, network through raw TCP and system printers
// through CUPS.
type Local struct {
	conns       *printer.ConnectionManager
	usb         *printer.USBConnector
	bt          *printer.BluetoothConnector
	scanTimeout time.Duration
	spool       cups
	deviceFile  func(vid, pid uint16) string
	network     func(host string, port int) printer.Printer
	serialPorts func() ([]string, error)
	now         func() time.Time
}

// LocalOption configures a Local bridge.
type LocalOption func(*Local)

// WithUSBDiscovery enumerates the USB bus with c during discovery.
func WithUSBDiscovery(c *printer.USBConnector) LocalOption {
	return func(l *Local) { l.usb = c }
}

// WithBluetoothScan adds a BLE scan of at most timeout to discovery.
func WithBluetoothScan(c *printer.BluetoothConnector, timeout time.Duration) LocalOption {
	return func(l *Local) {
		l.bt = c
		l.scanTimeout = timeout
	}
}

// WithCommandRunner replaces os/exec for lp and lpstat.
func WithCommandRunner(run CommandRunner) LocalOption {
	return func(l *Local) { l.spool = cups{run: run} }
}

// WithNetworkDialer replaces the raw TCP printer factory.
func WithNetworkDialer(f func(host string, port int) printer.Printer) LocalOption {
	return func(l *Local) { l.network = f }
}

// WithDeviceFileLookup replaces the sysfs lookup of /dev/usb/lp* nodes.
func WithDeviceFileLookup(f func(vid, pid uint16) string) LocalOption {
	return func(l *Local) { l.deviceFile = f }
}

// WithSerialPortLister replaces the serial port enumeration used by discovery.
func WithSerialPortLister(f func() ([]string, error)) LocalOption {
	return func(l *Local) { l.serialPorts = f }
}

// NewLocal creates an in-process bridge over conns.
func NewLocal(conns *printer.ConnectionManager, opts ...LocalOption) *Local {
	l := &Local{
		conns:       conns,
		spool:       cups{run: ExecRunner},
		deviceFile:  printer.FindDeviceFile,
		network:     func(host string, port int) printer.Printer { return printer.NewNetworkPrinter(host, port) },
		serialPorts: printer.SerialPorts,
		now:         time.Now,
		scanTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func usbTarget(vid, pid uint16) printer.Target {
	return printer.Target{
		ID:        fmt.Sprintf("usb-%04x-%04x", vid, pid),
		Transport: printer.TransportUSB,
		VendorID:  vid,
		ProductID: pid,
	}
}

func (l *Local) PrintToUSB(ctx context.Context, vid, pid uint16, data []byte, format enum.PaperFormat) Result {
	log := printer.Logger().With("transport", "usb", "vendor_id", vid, "product_id", pid, "format", format.String())

	var sendErr error
	if l.conns != nil && l.conns.Supports(printer.TransportUSB) {
		if sendErr = l.conns.Send(ctx, usbTarget(vid, pid), data); sendErr == nil {
			return Ok()
		}
		log.Warn("libusb send failed, trying kernel device file", "error", sendErr)
	}

	path := l.deviceFile(vid, pid)
	if path == "" {
		if sendErr != nil {
			return Fail(fmt.Errorf("%w: %v", ErrNoDevice, sendErr))
		}
		return Fail(ErrNoDevice)
	}
	if err := printer.NewDevicePrinter(path).Print(ctx, data); err != nil {
		return Fail(err)
	}
	return Ok()
}

func (l *Local) PrintToNetwork(ctx context.Context, ip string, port int, data []byte, format enum.PaperFormat) Result {
	if ip == "" {
		return Fail(errors.New("bridge: network printer has no address"))
	}
	p := l.network(ip, port)
	if err := p.Print(ctx, data); err != nil {
		printer.Logger().Warn("network print failed", "ip", ip, "port", port, "format", format.String(), "error", err)
		return Fail(err)
	}
	return Ok()
}

func (l *Local) PrintToSystem(ctx context.Context, name string, data []byte) Result {
	if name == "" {
		return Fail(errors.New("bridge: system printer name not set"))
	}
	if err := l.spool.printRaw(ctx, name, data); err != nil {
		return Fail(err)
	}
	return Ok()
}

// PrintImage sends a PNG to a CUPS queue scaled to the roll width.
func (l *Local) PrintImage(ctx context.Context, name string, png []byte, format enum.PaperFormat) Result {
	if name == "" {
		return Fail(errors.New("bridge: system printer name not set"))
	}
	if err := l.spool.printImage(ctx, name, png, format.PaperMM()); err != nil {
		return Fail(err)
	}
	return Ok()
}

// PrintHTML sends a complete HTML receipt to a CUPS queue.
func (l *Local) PrintHTML(ctx context.Context, name, html string, format enum.PaperFormat) Result {
	if name == "" {
		return Fail(errors.New("bridge: system printer name not set"))
	}
	if html == "" {
		return Fail(errors.New("bridge: empty document"))
	}
	if err := l.spool.printHTML(ctx, name, html, format.PaperMM()); err != nil {
		return Fail(err)
	}
	return Ok()
}

// send routes raw bytes to p by transport.
func (l *Local) send(ctx context.Context, p *entity.Printer, data []byte) Result {
	switch p.Type {
	case enum.TransportUSB:
		return l.PrintToUSB(ctx, uint16(p.VendorID), uint16(p.ProductID), data, p.Format)
	case enum.TransportNetwork:
		return l.PrintToNetwork(ctx, p.IPAddress, p.NetworkPort(), data, p.Format)
	case enum.TransportSystem:
		return l.PrintToSystem(ctx, p.SystemName, data)
	default:
		if l.conns == nil {
			return Fail(printer.ErrNoConnector)
		}
		if err := l.conns.Send(ctx, p.Target(), data); err != nil {
			return Fail(err)
		}
		return Ok()
	}
}

func (l *Local) OpenCashDrawer(ctx context.Context, p *entity.Printer) Result {
	if p == nil {
		return Fail(errNoPrinter)
	}
	data := printer.NewBuilder(p.PaperWidth()).Init().OpenDrawer().Build()
	return l.send(ctx, p, data)
}

func (l *Local) TestPrinter(ctx context.Context, p *entity.Printer) Result {
	if p == nil {
		return Fail(errNoPrinter)
	}
	return l.send(ctx, p, printer.TestPage(p.PaperWidth(), p.Name, l.now()))
}

func (l *Local) GetPrinterStatus(ctx context.Context, p *entity.Printer) PrinterStatus {
	if p == nil {
		return PrinterStatus{Detail: errNoPrinter.Error()}
	}
	switch p.Type {
	case enum.TransportNetwork:
		addr := l.network(p.IPAddress, p.NetworkPort())
		if addr.IsConnected(ctx) {
			return PrinterStatus{Online: true, Detail: "reachable"}
		}
		return PrinterStatus{Detail: "unreachable"}
	case enum.TransportSystem:
		return l.spool.status(ctx, p.SystemName)
	case enum.TransportUSB:
		if l.conns != nil && l.conns.IsConnected(usbTarget(uint16(p.VendorID), uint16(p.ProductID)).ID) {
			return PrinterStatus{Online: true, Detail: "connected"}
		}
		if path := l.deviceFile(uint16(p.VendorID), uint16(p.ProductID)); path != "" {
			return PrinterStatus{Online: true, Detail: path}
		}
		if l.usb != nil {
			devs, err := l.usb.DiscoverUSB()
			if err == nil {
				for _, d := range devs {
					if int(d.VendorID) == p.VendorID && int(d.ProductID) == p.ProductID {
						return PrinterStatus{Online: true, Detail: d.Description}
					}
				}
			}
		}
		return PrinterStatus{Detail: "not attached"}
	default:
		if l.conns != nil {
			info := l.conns.Status(p.ID.String())
			return PrinterStatus{Online: info.Status == printer.StatusConnected, Detail: string(info.Status)}
		}
		return PrinterStatus{Detail: "not managed"}
	}
}

// DiscoverPrinters lists USB, serial, CUPS and (when enabled) BLE printers.
// Sources that fail are skipped; the error is only returned when all fail.
func (l *Local) DiscoverPrinters(ctx context.Context) ([]DiscoveredPrinter, error) {
	var found []DiscoveredPrinter
	var errs []error

	if l.usb != nil {
		devs, err := l.usb.DiscoverUSB()
		if err != nil {
			errs = append(errs, fmt.Errorf("usb: %w", err))
		}
		for _, d := range devs {
			found = append(found, DiscoveredPrinter{
				Type:      enum.TransportUSB,
				Name:      d.Description,
				VendorID:  d.VendorID,
				ProductID: d.ProductID,
			})
		}
	}

	if l.serialPorts != nil {
		ports, err := l.serialPorts()
		if err != nil {
			errs = append(errs, fmt.Errorf("serial: %w", err))
		}
		for _, port := range ports {
			found = append(found, DiscoveredPrinter{Type: enum.TransportSerial, Name: port, SerialPort: port})
		}
	}

	queues, err := l.spool.queues(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("cups: %w", err))
	}
	for _, q := range queues {
		found = append(found, DiscoveredPrinter{Type: enum.TransportSystem, Name: q, SystemName: q})
	}

	if l.bt != nil {
		scanCtx, cancel := context.WithTimeout(ctx, l.scanTimeout)
		devs, err := l.bt.Scan(scanCtx)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("bluetooth: %w", err))
		}
		for _, d := range devs {
			found = append(found, DiscoveredPrinter{Type: enum.TransportBluetooth, Name: d.Name, Address: d.Address})
		}
	}

	if len(found) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	for _, e := range errs {
		printer.Logger().Debug("discovery source failed", "error", e)
	}
	return found, nil
}

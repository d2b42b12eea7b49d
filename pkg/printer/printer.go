package printer

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultRawPort is the raw JetDirect port served by network receipt printers.
const DefaultRawPort = 9100

// Printer sends a complete job in one call, opening and closing its own handle.
type Printer interface {
	// Print sends raw ESC/POS bytes to the printer.
	Print(ctx context.Context, data []byte) error
	// IsConnected reports whether the printer can currently be reached.
	IsConnected(ctx context.Context) bool
}

// --- Network Printer (dials TCP, e.g. 192.168.1.100:9100) ---

// NetworkPrinter sends jobs over a raw TCP socket.
type NetworkPrinter struct {
	address      string
	dialTimeout  time.Duration
	writeTimeout time.Duration
}

// NewNetworkPrinter creates a printer for host:port. Port 0 means 9100.
func NewNetworkPrinter(host string, port int) *NetworkPrinter {
	if port <= 0 {
		port = DefaultRawPort
	}
	return &NetworkPrinter{
		address:      net.JoinHostPort(host, strconv.Itoa(port)),
		dialTimeout:  5 * time.Second,
		writeTimeout: 10 * time.Second,
	}
}

// Address returns host:port.
func (p *NetworkPrinter) Address() string {
	return p.address
}

func (p *NetworkPrinter) Print(ctx context.Context, data []byte) error {
	d := net.Dialer{Timeout: p.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: failed to connect to %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(p.writeTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to %s: %w", p.address, err)
	}
	return nil
}

func (p *NetworkPrinter) IsConnected(ctx context.Context) bool {
	d := net.Dialer{Timeout: 2 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// --- Device file printer (kernel usblp, e.g. /dev/usb/lp0) ---

// DevicePrinter writes to a character device exposed by the kernel printer
// driver. Used when libusb cannot claim the interface.
type DevicePrinter struct {
	path string
}

// NewDevicePrinter creates a printer that writes to a device file.
func NewDevicePrinter(path string) *DevicePrinter {
	return &DevicePrinter{path: path}
}

func (p *DevicePrinter) Print(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: failed to open USB device %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to USB device %s: %w", p.path, err)
	}
	return nil
}

func (p *DevicePrinter) IsConnected(context.Context) bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// FindDeviceFile returns the usblp node whose sysfs parent matches vid/pid,
// or "" when none does.
func FindDeviceFile(vid, pid uint16) string {
	nodes, _ := filepath.Glob("/sys/class/usbmisc/lp*")
	for _, node := range nodes {
		intf, err := filepath.EvalSymlinks(filepath.Join(node, "device"))
		if err != nil {
			continue
		}
		dev := filepath.Dir(intf)
		if readHex(filepath.Join(dev, "idVendor")) == vid && readHex(filepath.Join(dev, "idProduct")) == pid {
			return filepath.Join("/dev/usb", filepath.Base(node))
		}
	}
	return ""
}

func readHex(path string) uint16 {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	v, err := strconv.ParseUint(string(bytes.TrimSpace(raw)), 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}

package printer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tinygo.org/x/bluetooth"
)

// Service and write characteristic pairs used by BLE receipt printers.
var blePrinterProfiles = []struct {
	service string
	write   string
}{
	{service: "000018f0-0000-1000-8000-00805f9b34fb", write: "00002af1-0000-1000-8000-00805f9b34fb"},
	{service: "0000ff00-0000-1000-8000-00805f9b34fb", write: "0000ff02-0000-1000-8000-00805f9b34fb"},
	{service: "e7810a71-73ae-499d-8c15-faa9aef0c3f2", write: "bef8d6c9-9c21-4c9e-b632-bd58c1009f9f"},
}

// BLENamePrefixes are advertised name prefixes treated as printers during a scan.
var BLENamePrefixes = []string{"MTP", "PT-", "Printer", "BlueTooth Printer", "RPP", "POS"}

// BLEDevice is a printer seen during a scan.
type BLEDevice struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	RSSI    int16  `json:"rssi"`
}

// BluetoothConnector writes to BLE printers through the host adapter.
type BluetoothConnector struct {
	adapter  *bluetooth.Adapter
	enable   sync.Once
	errOnce  error
	services []bluetooth.UUID
	writes   map[bluetooth.UUID]bool
}

// NewBluetoothConnector uses the default host adapter.
func NewBluetoothConnector() *BluetoothConnector {
	c := &BluetoothConnector{
		adapter: bluetooth.DefaultAdapter,
		writes:  make(map[bluetooth.UUID]bool),
	}
	for _, p := range blePrinterProfiles {
		if u, err := bluetooth.ParseUUID(p.service); err == nil {
			c.services = append(c.services, u)
		}
		if u, err := bluetooth.ParseUUID(p.write); err == nil {
			c.writes[u] = true
		}
	}
	return c
}

func (c *BluetoothConnector) enabled() error {
	c.enable.Do(func() {
		c.errOnce = c.adapter.Enable()
	})
	return c.errOnce
}

func (c *BluetoothConnector) isPrinter(res bluetooth.ScanResult) bool {
	for _, u := range c.services {
		if res.HasServiceUUID(u) {
			return true
		}
	}
	name := res.LocalName()
	for _, p := range BLENamePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Scan collects advertising printers until ctx is done.
func (c *BluetoothConnector) Scan(ctx context.Context) ([]BLEDevice, error) {
	if err := c.enabled(); err != nil {
		return nil, fmt.Errorf("enable bluetooth adapter: %w", err)
	}
	var mu sync.Mutex
	seen := make(map[string]BLEDevice)

	done := make(chan error, 1)
	go func() {
		done <- c.adapter.Scan(func(_ *bluetooth.Adapter, res bluetooth.ScanResult) {
			if !c.isPrinter(res) {
				return
			}
			mu.Lock()
			seen[res.Address.String()] = BLEDevice{Name: res.LocalName(), Address: res.Address.String(), RSSI: res.RSSI}
			mu.Unlock()
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("bluetooth scan: %w", err)
		}
	case <-ctx.Done():
		_ = c.adapter.StopScan()
		<-done
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]BLEDevice, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	return out, nil
}

// Connect scans for the printer named by t.BluetoothAddress or
// t.BluetoothName, connects, and resolves its write characteristic.
func (c *BluetoothConnector) Connect(ctx context.Context, t Target) (Link, error) {
	if err := c.enabled(); err != nil {
		return nil, fmt.Errorf("enable bluetooth adapter: %w", err)
	}

	found := make(chan bluetooth.ScanResult, 1)
	scanErr := make(chan error, 1)
	go func() {
		scanErr <- c.adapter.Scan(func(a *bluetooth.Adapter, res bluetooth.ScanResult) {
			if t.BluetoothAddress != "" && !strings.EqualFold(res.Address.String(), t.BluetoothAddress) {
				return
			}
			if t.BluetoothAddress == "" {
				if t.BluetoothName != "" && res.LocalName() != t.BluetoothName {
					return
				}
				if t.BluetoothName == "" && !c.isPrinter(res) {
					return
				}
			}
			select {
			case found <- res:
				_ = a.StopScan()
			default:
			}
		})
	}()

	var res bluetooth.ScanResult
	select {
	case res = <-found:
		<-scanErr
	case err := <-scanErr:
		if err != nil {
			return nil, fmt.Errorf("bluetooth scan: %w", err)
		}
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, t)
	case <-ctx.Done():
		_ = c.adapter.StopScan()
		<-scanErr
		return nil, fmt.Errorf("%w: %s: %v", ErrDeviceNotFound, t, ctx.Err())
	}

	dev, err := c.adapter.Connect(res.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("bluetooth connect %s: %w", res.Address.String(), err)
	}

	services, err := dev.DiscoverServices(c.services)
	if err != nil || len(services) == 0 {
		_ = dev.Disconnect()
		return nil, fmt.Errorf("%w: no printer service on %s", ErrNoWritableEndpoint, res.Address.String())
	}

	var picked *bluetooth.DeviceCharacteristic
	for _, svc := range services {
		chars, err := svc.DiscoverCharacteristics(nil)
		if err != nil {
			continue
		}
		for i := range chars {
			if c.writes[chars[i].UUID()] {
				picked = &chars[i]
				break
			}
			if picked == nil {
				picked = &chars[i]
			}
		}
		if picked != nil && c.writes[picked.UUID()] {
			break
		}
	}
	if picked == nil {
		_ = dev.Disconnect()
		return nil, ErrNoWritableEndpoint
	}

	return &bleLink{char: *picked, disconnect: dev.Disconnect}, nil
}

type bleLink struct {
	char       bluetooth.DeviceCharacteristic
	disconnect func() error
}

func (l *bleLink) WritePacket(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := l.char.WriteWithoutResponse(p)
	return err
}

func (l *bleLink) Close() error {
	return l.disconnect()
}

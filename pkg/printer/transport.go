package printer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Transport identifies how bytes reach a printer.
type Transport string

const (
	TransportUSB       Transport = "usb"
	TransportBluetooth Transport = "bluetooth"
	TransportSerial    Transport = "serial"
	TransportNetwork   Transport = "network"
	TransportSystem    Transport = "system"
)

var (
	ErrNoConnector          = errors.New("printer: no connector registered for transport")
	ErrUnsupportedTransport = errors.New("printer: transport cannot be driven directly")
	ErrDeviceNotFound       = errors.New("printer: device not found")
	ErrNotConnected         = errors.New("printer: not connected")
	ErrNoWritableEndpoint   = errors.New("printer: device exposes no writable endpoint")
	ErrVendorNotAllowed     = errors.New("printer: usb device is not a known printer")
)

// Target describes a printer for the connectors. ID keys the connection cache.
type Target struct {
	ID        string
	Transport Transport

	// USB
	VendorID  uint16
	ProductID uint16

	// Bluetooth LE
	BluetoothName    string
	BluetoothAddress string

	// Serial / Bluetooth SPP
	SerialPort string
	BaudRate   int

	// Network
	Address string
}

func (t Target) String() string {
	switch t.Transport {
	case TransportUSB:
		return fmt.Sprintf("usb %04x:%04x", t.VendorID, t.ProductID)
	case TransportBluetooth:
		if t.BluetoothAddress != "" {
			return "bluetooth " + t.BluetoothAddress
		}
		return "bluetooth " + t.BluetoothName
	case TransportSerial:
		return "serial " + t.SerialPort
	}
	return string(t.Transport) + " " + t.Address
}

// Link is an open handle to one device. WritePacket sends a single packet
// no larger than the transport's chunk size.
type Link interface {
	WritePacket(ctx context.Context, p []byte) error
	Close() error
}

// Connector opens links for one transport.
type Connector interface {
	Connect(ctx context.Context, t Target) (Link, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context, t Target) (Link, error)

func (f ConnectorFunc) Connect(ctx context.Context, t Target) (Link, error) {
	return f(ctx, t)
}

// ChunkPolicy splits a payload into packets a transport will accept.
type ChunkPolicy struct {
	Size  int
	Delay time.Duration
}

// DefaultChunkPolicies returns the packet sizes used when none are configured.
func DefaultChunkPolicies() map[Transport]ChunkPolicy {
	return map[Transport]ChunkPolicy{
		TransportUSB:       {Size: 64},
		TransportBluetooth: {Size: 20, Delay: 20 * time.Millisecond},
		TransportSerial:    {Size: 256},
	}
}

// WriteChunked sends data through l in policy-sized packets.
func WriteChunked(ctx context.Context, l Link, data []byte, policy ChunkPolicy) error {
	size := policy.Size
	if size <= 0 {
		size = len(data)
	}
	for off := 0; off < len(data); off += size {
		end := off + size
		if end > len(data) {
			end = len(data)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.WritePacket(ctx, data[off:end]); err != nil {
			return err
		}
		if policy.Delay > 0 && end < len(data) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(policy.Delay):
			}
		}
	}
	return nil
}

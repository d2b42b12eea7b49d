package printer

import (
	"context"
	"fmt"
	"io"

	"go.bug.st/serial"
)

const defaultBaudRate = 9600

// SerialConnector writes to COM ports, USB serial adapters and Bluetooth
// SPP bindings such as /dev/rfcomm0.
type SerialConnector struct {
	open func(name string, mode *serial.Mode) (serial.Port, error)
}

// NewSerialConnector returns a connector backed by go.bug.st/serial.
func NewSerialConnector() *SerialConnector {
	return &SerialConnector{open: serial.Open}
}

func (c *SerialConnector) Connect(ctx context.Context, t Target) (Link, error) {
	if t.SerialPort == "" {
		return nil, fmt.Errorf("%w: serial port not set", ErrDeviceNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	baud := t.BaudRate
	if baud <= 0 {
		baud = defaultBaudRate
	}
	port, err := c.open(t.SerialPort, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", t.SerialPort, err)
	}
	return &serialLink{port: port}, nil
}

// SerialPorts lists the serial ports present on the host.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}

type serialLink struct {
	port serial.Port
}

func (l *serialLink) WritePacket(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for len(p) > 0 {
		n, err := l.port.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

func (l *serialLink) Close() error {
	return l.port.Close()
}

package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/pkg/printer"
	"gorm.io/gorm"
)

// Printer is a configured receipt or kitchen printer. The print core only reads it.
type Printer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string             `gorm:"size:100;not null" json:"name"`
	Role enum.PrinterRole   `gorm:"not null;index" json:"role"`
	Type enum.TransportType `gorm:"not null" json:"type"`

	// USB
	VendorID  int `gorm:"default:0" json:"vendor_id,omitempty"`
	ProductID int `gorm:"default:0" json:"product_id,omitempty"`

	// Network
	IPAddress string `gorm:"size:64" json:"ip_address,omitempty"`
	Port      int    `gorm:"default:9100" json:"port,omitempty"`

	// System (OS spooler)
	SystemName string `gorm:"size:255" json:"system_name,omitempty"`

	// Bluetooth LE
	BluetoothName    string `gorm:"size:100" json:"bluetooth_name,omitempty"`
	BluetoothAddress string `gorm:"size:64" json:"bluetooth_address,omitempty"`

	// Serial / SPP
	SerialPort string `gorm:"size:255" json:"serial_port,omitempty"`
	BaudRate   int    `gorm:"default:9600" json:"baud_rate,omitempty"`

	Format     enum.PaperFormat `gorm:"not null;default:0" json:"format"`
	IsActive   bool             `gorm:"default:true;index" json:"is_active"`
	RasterMode bool             `gorm:"default:false" json:"raster_mode"`
	OpenDrawer bool             `gorm:"default:false" json:"open_drawer"`
}

// ErrPrinterAddressMissing is returned by Validate when the transport has no address.
var ErrPrinterAddressMissing = errors.New("printer address not configured")

// BeforeCreate generates a UUID before creating a printer
func (p *Printer) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Printer model
func (Printer) TableName() string {
	return "printers"
}

// Validate checks that the address fields required by the transport are set.
func (p *Printer) Validate() error {
	switch p.Type {
	case enum.TransportUSB:
		if p.VendorID == 0 || p.ProductID == 0 {
			return errors.Join(ErrPrinterAddressMissing, errors.New("usb printer needs vendor_id and product_id"))
		}
	case enum.TransportNetwork:
		if strings.TrimSpace(p.IPAddress) == "" {
			return errors.Join(ErrPrinterAddressMissing, errors.New("network printer needs ip_address"))
		}
	case enum.TransportSystem:
		if strings.TrimSpace(p.SystemName) == "" {
			return errors.Join(ErrPrinterAddressMissing, errors.New("system printer needs system_name"))
		}
	case enum.TransportBluetooth:
		if p.BluetoothAddress == "" && p.BluetoothName == "" {
			return errors.Join(ErrPrinterAddressMissing, errors.New("bluetooth printer needs bluetooth_address or bluetooth_name"))
		}
	case enum.TransportSerial:
		if p.SerialPort == "" {
			return errors.Join(ErrPrinterAddressMissing, errors.New("serial printer needs serial_port"))
		}
	}
	return nil
}

// NetworkPort returns the raw TCP port, 9100 when unset.
func (p *Printer) NetworkPort() int {
	if p.Port <= 0 {
		return printer.DefaultRawPort
	}
	return p.Port
}

// Target converts the printer into a connection manager address.
func (p *Printer) Target() printer.Target {
	return printer.Target{
		ID:               p.ID.String(),
		Transport:        transportOf(p.Type),
		VendorID:         uint16(p.VendorID),
		ProductID:        uint16(p.ProductID),
		BluetoothName:    p.BluetoothName,
		BluetoothAddress: p.BluetoothAddress,
		SerialPort:       p.SerialPort,
		BaudRate:         p.BaudRate,
		Address:          p.IPAddress,
	}
}

// PaperWidth returns the builder width for the printer's roll.
func (p *Printer) PaperWidth() printer.PaperWidth {
	return printer.PaperWidth(p.Format.Chars())
}

func transportOf(t enum.TransportType) printer.Transport {
	switch t {
	case enum.TransportBluetooth:
		return printer.TransportBluetooth
	case enum.TransportNetwork:
		return printer.TransportNetwork
	case enum.TransportSystem:
		return printer.TransportSystem
	case enum.TransportSerial:
		return printer.TransportSerial
	default:
		return printer.TransportUSB
	}
}

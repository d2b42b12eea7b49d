package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/spf13/viper"
)

// Station is the printer and terminal layout read from PRINTERS_FILE.
type Station struct {
	Printers []entity.Printer
	Agents   []AgentConfig
}

type printerEntry struct {
	ID               string `mapstructure:"id"`
	Name             string `mapstructure:"name"`
	Role             string `mapstructure:"role"`
	Type             string `mapstructure:"type"`
	VendorID         int    `mapstructure:"vendor_id"`
	ProductID        int    `mapstructure:"product_id"`
	IPAddress        string `mapstructure:"ip_address"`
	Port             int    `mapstructure:"port"`
	SystemName       string `mapstructure:"system_name"`
	BluetoothName    string `mapstructure:"bluetooth_name"`
	BluetoothAddress string `mapstructure:"bluetooth_address"`
	SerialPort       string `mapstructure:"serial_port"`
	BaudRate         int    `mapstructure:"baud_rate"`
	Format           string `mapstructure:"format"`
	Active           *bool  `mapstructure:"active"`
	RasterMode       bool   `mapstructure:"raster_mode"`
	OpenDrawer       bool   `mapstructure:"open_drawer"`
}

type agentEntry struct {
	ClientID string   `mapstructure:"client_id"`
	KeyHash  string   `mapstructure:"key_hash"`
	Scopes   []string `mapstructure:"scopes"`
}

// LoadStation reads a YAML (or JSON/TOML) station file. Printers are
// validated so a typo surfaces at startup rather than on the first bill.
func LoadStation(path string) (*Station, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read station file %s: %w", path, err)
	}

	var printers []printerEntry
	if err := v.UnmarshalKey("printers", &printers); err != nil {
		return nil, fmt.Errorf("decode printers: %w", err)
	}
	var agents []agentEntry
	if err := v.UnmarshalKey("agents", &agents); err != nil {
		return nil, fmt.Errorf("decode agents: %w", err)
	}

	st := &Station{}
	for i, e := range printers {
		p, err := e.toPrinter()
		if err != nil {
			return nil, fmt.Errorf("printer %d (%s): %w", i, e.Name, err)
		}
		st.Printers = append(st.Printers, p)
	}
	for _, a := range agents {
		if strings.TrimSpace(a.ClientID) == "" {
			continue
		}
		st.Agents = append(st.Agents, AgentConfig(a))
	}
	return st, nil
}

func (e printerEntry) toPrinter() (entity.Printer, error) {
	role, ok := enum.ParsePrinterRole(e.Role)
	if !ok {
		return entity.Printer{}, fmt.Errorf("unknown role %q", e.Role)
	}
	kind, ok := enum.ParseTransportType(e.Type)
	if !ok {
		return entity.Printer{}, fmt.Errorf("unknown type %q", e.Type)
	}
	format := enum.PaperFormat58mm
	if e.Format != "" {
		if format, ok = enum.ParsePaperFormat(e.Format); !ok {
			return entity.Printer{}, fmt.Errorf("unknown format %q", e.Format)
		}
	}

	p := entity.Printer{
		Name:             e.Name,
		Role:             role,
		Type:             kind,
		VendorID:         e.VendorID,
		ProductID:        e.ProductID,
		IPAddress:        e.IPAddress,
		Port:             e.Port,
		SystemName:       e.SystemName,
		BluetoothName:    e.BluetoothName,
		BluetoothAddress: e.BluetoothAddress,
		SerialPort:       e.SerialPort,
		BaudRate:         e.BaudRate,
		Format:           format,
		IsActive:         e.Active == nil || *e.Active,
		RasterMode:       e.RasterMode,
		OpenDrawer:       e.OpenDrawer,
	}
	if e.ID != "" {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return entity.Printer{}, fmt.Errorf("invalid id: %w", err)
		}
		p.ID = id
	}
	if err := p.Validate(); err != nil {
		return entity.Printer{}, err
	}
	return p, nil
}

// Package bridge implements the native print host: the side that can reach
// USB, network and OS spooler printers.
package bridge

import (
	"context"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
)

// Result is the outcome of one bridge call.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Ok is a successful Result.
func Ok() Result { return Result{Success: true} }

// Fail wraps err into a failed Result.
func Fail(err error) Result {
	if err == nil {
		return Result{Error: "unknown error"}
	}
	return Result{Error: err.Error()}
}

// PrinterStatus is a reachability probe.
type PrinterStatus struct {
	Online bool   `json:"online"`
	Detail string `json:"detail,omitempty"`
}

// DiscoveredPrinter is a printer seen by DiscoverPrinters.
type DiscoveredPrinter struct {
	Type       enum.TransportType `json:"type"`
	Name       string             `json:"name"`
	VendorID   uint16             `json:"vendor_id,omitempty"`
	ProductID  uint16             `json:"product_id,omitempty"`
	Address    string             `json:"address,omitempty"`
	SystemName string             `json:"system_name,omitempty"`
	SerialPort string             `json:"serial_port,omitempty"`
}

// Bridge drives printers the browser cannot reach.
type Bridge interface {
	PrintToUSB(ctx context.Context, vendorID, productID uint16, data []byte, format enum.PaperFormat) Result
	PrintToNetwork(ctx context.Context, ip string, port int, data []byte, format enum.PaperFormat) Result
	PrintToSystem(ctx context.Context, name string, data []byte) Result
	OpenCashDrawer(ctx context.Context, p *entity.Printer) Result
	GetPrinterStatus(ctx context.Context, p *entity.Printer) PrinterStatus
	TestPrinter(ctx context.Context, p *entity.Printer) Result
	DiscoverPrinters(ctx context.Context) ([]DiscoveredPrinter, error)
}

// HTMLPrinter is implemented by hosts that can print an HTML document to a spooler queue.
type HTMLPrinter interface {
	PrintHTML(ctx context.Context, name, html string, format enum.PaperFormat) Result
}

// ImagePrinter is implemented by hosts that can print a bitmap to a spooler queue.
type ImagePrinter interface {
	PrintImage(ctx context.Context, name string, png []byte, format enum.PaperFormat) Result
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/infrastructure/bridge"
	"github.com/sangkips/posprint/internal/presentation/http/dto/response"
)

// BridgeHandler serves this host's printers to remote POS terminals. Results
// always travel in data so a failed print is not mistaken for a failed call.
type BridgeHandler struct {
	bridge bridge.Bridge
}

// NewBridgeHandler creates a new bridge handler.
func NewBridgeHandler(b bridge.Bridge) *BridgeHandler {
	return &BridgeHandler{bridge: b}
}

func bindBridge(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return false
	}
	return true
}

func bridgeResult(c *gin.Context, res bridge.Result) {
	if res.Success {
		response.OK(c, "Printed", res)
		return
	}
	response.OK(c, "Print failed", res)
}

// USB prints raw bytes on a USB printer.
func (h *BridgeHandler) USB(c *gin.Context) {
	var req bridge.USBRequest
	if !bindBridge(c, &req) {
		return
	}
	bridgeResult(c, h.bridge.PrintToUSB(c.Request.Context(), req.VendorID, req.ProductID, req.Data, req.Format))
}

// Network prints raw bytes on a network printer.
func (h *BridgeHandler) Network(c *gin.Context) {
	var req bridge.NetworkRequest
	if !bindBridge(c, &req) {
		return
	}
	bridgeResult(c, h.bridge.PrintToNetwork(c.Request.Context(), req.IP, req.Port, req.Data, req.Format))
}

// System prints raw bytes through the OS spooler.
func (h *BridgeHandler) System(c *gin.Context) {
	var req bridge.SystemRequest
	if !bindBridge(c, &req) {
		return
	}
	bridgeResult(c, h.bridge.PrintToSystem(c.Request.Context(), req.Name, req.Data))
}

// Image prints a PNG through the OS spooler.
func (h *BridgeHandler) Image(c *gin.Context) {
	ip, ok := h.bridge.(bridge.ImagePrinter)
	if !ok {
		response.ErrorWithCode(c, http.StatusNotImplemented, "Image printing is not supported by this bridge")
		return
	}
	var req bridge.ImageRequest
	if !bindBridge(c, &req) {
		return
	}
	bridgeResult(c, ip.PrintImage(c.Request.Context(), req.Name, req.PNG, req.Format))
}

// HTML prints a styled receipt document through the OS spooler.
func (h *BridgeHandler) HTML(c *gin.Context) {
	hp, ok := h.bridge.(bridge.HTMLPrinter)
	if !ok {
		response.ErrorWithCode(c, http.StatusNotImplemented, "HTML printing is not supported by this bridge")
		return
	}
	var req bridge.HTMLRequest
	if !bindBridge(c, &req) {
		return
	}
	bridgeResult(c, hp.PrintHTML(c.Request.Context(), req.Name, req.HTML, req.Format))
}

// Drawer pulses the drawer wired to a printer.
func (h *BridgeHandler) Drawer(c *gin.Context) {
	var req bridge.PrinterRequest
	if !bindBridge(c, &req) {
		return
	}
	bridgeResult(c, h.bridge.OpenCashDrawer(c.Request.Context(), &req.Printer))
}

// Test prints a test page.
func (h *BridgeHandler) Test(c *gin.Context) {
	var req bridge.PrinterRequest
	if !bindBridge(c, &req) {
		return
	}
	bridgeResult(c, h.bridge.TestPrinter(c.Request.Context(), &req.Printer))
}

// Status reports whether a printer is reachable.
func (h *BridgeHandler) Status(c *gin.Context) {
	var req bridge.PrinterRequest
	if !bindBridge(c, &req) {
		return
	}
	response.OK(c, "Printer status retrieved", h.bridge.GetPrinterStatus(c.Request.Context(), &req.Printer))
}

// Discover lists the printers attached to this host.
func (h *BridgeHandler) Discover(c *gin.Context) {
	found, err := h.bridge.DiscoverPrinters(c.Request.Context())
	if err != nil && !errors.Is(err, bridge.ErrNoDevice) {
		response.ErrorWithCode(c, http.StatusBadGateway, "Discovery failed: "+err.Error())
		return
	}
	if found == nil {
		found = []bridge.DiscoveredPrinter{}
	}
	response.OK(c, "Printers discovered", found)
}

package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/application/service"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/internal/presentation/http/dto/request"
	"github.com/sangkips/posprint/internal/presentation/http/dto/response"
	"github.com/sangkips/posprint/pkg/pagination"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// ListPrinters returns the configured printers.
func (h *PrinterHandler) ListPrinters(c *gin.Context) {
	printers, err := h.printerService.ListPrinters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Printers retrieved", printers)
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	status, err := h.printerService.GetStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Printer status retrieved", status)
}

// TestPrint sends a test page to the printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := h.printerService.TestPrint(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !res.Success {
		response.OK(c, "Test print failed", gin.H{"result": res, "warning": res.Error})
		return
	}
	response.OK(c, "Test page sent to printer", gin.H{"result": res})
}

// Discover lists printers attached to the print host.
func (h *PrinterHandler) Discover(c *gin.Context) {
	found, err := h.printerService.Discover(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Printers discovered", found)
}

// Connections lists cached device connections.
func (h *PrinterHandler) Connections(c *gin.Context) {
	response.OK(c, "Connections retrieved", h.printerService.Connections())
}

// Disconnect drops one printer's cached connection.
func (h *PrinterHandler) Disconnect(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.printerService.Disconnect(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Printer disconnected", nil)
}

// DisconnectAll drops every cached connection.
func (h *PrinterHandler) DisconnectAll(c *gin.Context) {
	h.printerService.DisconnectAll()
	response.OK(c, "All printers disconnected", nil)
}

// ListJobs returns the print job log.
func (h *PrinterHandler) ListJobs(c *gin.Context) {
	var q request.PrintJobQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query: "+err.Error())
		return
	}

	filter := repository.PrintJobFilter{Document: q.Document}
	if q.Status != "" {
		var st enum.PrintJobStatus
		switch strings.ToLower(q.Status) {
		case "printed":
			st = enum.PrintJobPrinted
		case "failed":
			st = enum.PrintJobFailed
		default:
			st = enum.PrintJobQueued
		}
		filter.Status = &st
	}
	params := &pagination.PaginationParams{Page: q.Page, PerPage: q.PerPage}
	params.Validate()

	jobs, total, err := h.printerService.ListJobs(c.Request.Context(), filter, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	result := pagination.NewPaginatedResult(jobs, pagination.NewPagination(params.Page, params.PerPage, total))
	response.SuccessWithPagination(c, 200, "Print jobs retrieved", result)
}

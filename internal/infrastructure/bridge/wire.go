package bridge

import (
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
)

// Request bodies of the /api/v1/bridge endpoints. Byte slices travel as base64.

type USBRequest struct {
	VendorID  uint16           `json:"vendor_id" binding:"required"`
	ProductID uint16           `json:"product_id" binding:"required"`
	Data      []byte           `json:"data" binding:"required"`
	Format    enum.PaperFormat `json:"format"`
}

type NetworkRequest struct {
	IP     string           `json:"ip" binding:"required"`
	Port   int              `json:"port"`
	Data   []byte           `json:"data" binding:"required"`
	Format enum.PaperFormat `json:"format"`
}

type SystemRequest struct {
	Name string `json:"name" binding:"required"`
	Data []byte `json:"data" binding:"required"`
}

type ImageRequest struct {
	Name   string           `json:"name" binding:"required"`
	PNG    []byte           `json:"png" binding:"required"`
	Format enum.PaperFormat `json:"format"`
}

type HTMLRequest struct {
	Name   string           `json:"name" binding:"required"`
	HTML   string           `json:"html" binding:"required"`
	Format enum.PaperFormat `json:"format"`
}

type PrinterRequest struct {
	Printer entity.Printer `json:"printer"`
}

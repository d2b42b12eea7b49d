package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/application/service"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/internal/presentation/http/dto/request"
	"github.com/sangkips/posprint/internal/presentation/http/dto/response"
)

// PrintHandler handles bill, KOT and drawer requests.
// A failed print is reported in data with HTTP 200 so the till can fall back
// to a preview without treating the sale as failed.
type PrintHandler struct {
	dispatcher *service.PrintDispatcher
	queue      *service.PrintQueue
	preview    *service.PreviewService
}

// NewPrintHandler creates a new print handler. queue may be nil.
func NewPrintHandler(d *service.PrintDispatcher, q *service.PrintQueue, p *service.PreviewService) *PrintHandler {
	return &PrintHandler{dispatcher: d, queue: q, preview: p}
}

func printed(c *gin.Context, what string, res service.DispatchResult, extra gin.H) {
	data := gin.H{"result": res}
	for k, v := range extra {
		data[k] = v
	}
	if res.Success {
		response.OK(c, what+" printed successfully", data)
		return
	}
	data["warning"] = res.Error
	response.OK(c, what+" generated but printing failed", data)
}

// PrintBill prints a finalized bill.
func (h *PrintHandler) PrintBill(c *gin.Context) {
	var req request.PrintBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	res := h.dispatcher.DispatchBill(c.Request.Context(), roleOr(req.Role, enum.PrinterRoleCounter), req.Bill)
	printed(c, "Bill", res, nil)
}

// PrintKOT prints a kitchen ticket.
func (h *PrintHandler) PrintKOT(c *gin.Context) {
	var req request.PrintKOTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	res := h.dispatcher.DispatchKOT(c.Request.Context(), roleOr(req.Role, enum.PrinterRoleKitchen), req.KOT)
	printed(c, "KOT", res, nil)
}

// PrintKOTFromCart prints the unsent part of a cart and returns the cart
// with those quantities marked as sent. They are marked even when the
// ticket fails, so a retry never fires the whole cart again.
func (h *PrintHandler) PrintKOTFromCart(c *gin.Context) {
	var req request.CartKOTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	kot, ok := entity.BuildKOT(req.Header, req.Cart)
	if !ok {
		response.OK(c, "Nothing new to send to the kitchen", gin.H{"cart": req.Cart})
		return
	}

	res := h.dispatcher.DispatchKOT(c.Request.Context(), roleOr(req.Role, enum.PrinterRoleKitchen), kot)
	printed(c, "KOT", res, gin.H{"kot": kot, "cart": entity.MarkSent(req.Cart)})
}

// Enqueue hands a document to the print worker.
func (h *PrintHandler) Enqueue(c *gin.Context) {
	if h.queue == nil {
		response.ErrorWithCode(c, http.StatusServiceUnavailable, "Print queue is not enabled")
		return
	}

	var req request.QueuePrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	def := enum.PrinterRoleKitchen
	if req.Document == entity.DocumentBill {
		def = enum.PrinterRoleCounter
	}
	id, err := h.queue.Enqueue(c.Request.Context(), &service.PrintMessage{
		Document: req.Document,
		Role:     roleOr(req.Role, def),
		Bill:     req.Bill,
		KOT:      req.KOT,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, "Print job queued", gin.H{"id": id})
}

// OpenDrawer pulses the counter cash drawer.
func (h *PrintHandler) OpenDrawer(c *gin.Context) {
	res := h.dispatcher.OpenCashDrawer(c.Request.Context())
	if res.Success {
		response.OK(c, "Cash drawer opened", gin.H{"result": res})
		return
	}
	response.OK(c, "Cash drawer did not open", gin.H{"result": res, "warning": res.Error})
}

// PreviewBill renders a bill for on-screen printing.
func (h *PrintHandler) PreviewBill(c *gin.Context) {
	var q request.PreviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query: "+err.Error())
		return
	}
	var bill entity.BillData
	if err := c.ShouldBindJSON(&bill); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	p, err := h.preview.Bill(c.Request.Context(), &bill, q.PaperFormat(), q.Output)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, p.ContentType, p.Body)
}

// PreviewKOT renders a kitchen ticket for on-screen printing.
func (h *PrintHandler) PreviewKOT(c *gin.Context) {
	var q request.PreviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query: "+err.Error())
		return
	}
	var kot entity.KOTData
	if err := c.ShouldBindJSON(&kot); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	p, err := h.preview.KOT(&kot, q.PaperFormat(), q.Output)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, p.ContentType, p.Body)
}

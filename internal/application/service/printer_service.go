package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/internal/infrastructure/bridge"
	"github.com/sangkips/posprint/pkg/apperror"
	"github.com/sangkips/posprint/pkg/pagination"
	"github.com/sangkips/posprint/pkg/printer"
)

// PrinterService exposes printer configuration, status and maintenance actions.
type PrinterService struct {
	printers repository.PrinterRepository
	jobs     repository.PrintJobRepository
	conns    *printer.ConnectionManager
	bridge   bridge.Bridge
	log      *slog.Logger
}

// NewPrinterService creates a new printer service. bridge may be nil.
func NewPrinterService(
	printers repository.PrinterRepository,
	jobs repository.PrintJobRepository,
	conns *printer.ConnectionManager,
	b bridge.Bridge,
	log *slog.Logger,
) *PrinterService {
	if log == nil {
		log = slog.Default()
	}
	return &PrinterService{
		printers: printers,
		jobs:     jobs,
		conns:    conns,
		bridge:   b,
		log:      log,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Printer    *entity.Printer         `json:"printer"`
	Configured bool                    `json:"configured"`
	Online     bool                    `json:"online"`
	Detail     string                  `json:"detail,omitempty"`
	Connection *printer.ConnectionInfo `json:"connection,omitempty"`
}

// ListPrinters returns every configured printer.
func (s *PrinterService) ListPrinters(ctx context.Context) ([]entity.Printer, error) {
	return s.printers.List(ctx)
}

func (s *PrinterService) get(ctx context.Context, id uuid.UUID) (*entity.Printer, error) {
	p, err := s.printers.GetByID(ctx, id)
	if err != nil || p == nil {
		return nil, apperror.NewNotFoundError("Printer")
	}
	return p, nil
}

// GetStatus reports whether the printer can be reached.
func (s *PrinterService) GetStatus(ctx context.Context, id uuid.UUID) (*PrinterStatus, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	status := &PrinterStatus{Printer: p}
	if err := p.Validate(); err != nil {
		status.Detail = err.Error()
		return status, nil
	}
	status.Configured = true

	if s.conns != nil {
		info := s.conns.Status(p.Target().ID)
		status.Connection = &info
		status.Online = info.Status == printer.StatusConnected
	}
	if s.bridge != nil {
		ps := s.bridge.GetPrinterStatus(ctx, p)
		status.Online = ps.Online
		status.Detail = ps.Detail
	}
	return status, nil
}

// TestPrint sends a test page to the printer.
func (s *PrinterService) TestPrint(ctx context.Context, id uuid.UUID) (DispatchResult, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return DispatchResult{}, err
	}
	if err := p.Validate(); err != nil {
		return resultOf("", failure(ErrorConfiguration, err)), nil
	}

	if s.bridge != nil {
		r := s.bridge.TestPrinter(ctx, p)
		if !r.Success {
			s.log.Warn("test print failed", "printer", p.Name, "error", r.Error)
			return resultOf(MethodNative, failure(ErrorTransfer, errors.New(r.Error))), nil
		}
		return resultOf(MethodNative, nil), nil
	}

	if s.conns == nil || !s.conns.Supports(p.Target().Transport) {
		return resultOf("", failure(ErrorUnsupported, fmt.Errorf("%s printers need the native print bridge", p.Type))), nil
	}
	data := printer.TestPage(p.PaperWidth(), p.Name, time.Now())
	if err := s.conns.Send(ctx, p.Target(), data); err != nil {
		s.log.Warn("test print failed", "printer", p.Name, "error", err)
		return resultOf("", failure(ErrorTransfer, err)), nil
	}
	return resultOf(p.Type.String(), nil), nil
}

// Discover lists printers attached to the print host.
func (s *PrinterService) Discover(ctx context.Context) ([]bridge.DiscoveredPrinter, error) {
	if s.bridge == nil {
		return nil, apperror.NewBadRequestError("Printer discovery needs the native print bridge")
	}
	found, err := s.bridge.DiscoverPrinters(ctx)
	if err != nil {
		return nil, apperror.Wrap(http.StatusBadGateway, "Printer discovery failed", err)
	}
	return found, nil
}

// Connections returns every cached device connection.
func (s *PrinterService) Connections() []printer.ConnectionInfo {
	if s.conns == nil {
		return []printer.ConnectionInfo{}
	}
	return s.conns.Connections()
}

// Disconnect drops the cached connection of one printer.
func (s *PrinterService) Disconnect(ctx context.Context, id uuid.UUID) error {
	p, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if s.conns != nil {
		s.conns.Disconnect(p.Target().ID)
	}
	return nil
}

// DisconnectAll drops every cached connection.
func (s *PrinterService) DisconnectAll() {
	if s.conns != nil {
		s.conns.ClearAll()
	}
}

// ListJobs returns recorded print jobs, newest first.
func (s *PrinterService) ListJobs(ctx context.Context, filter repository.PrintJobFilter, params *pagination.PaginationParams) ([]entity.PrintJob, int64, error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()
	return s.jobs.List(ctx, filter, params)
}

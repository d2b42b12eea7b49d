package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/internal/infrastructure/bridge"
	"github.com/sangkips/posprint/internal/receipt"
	"github.com/sangkips/posprint/pkg/printer"
)

// Dispatch methods reported in DispatchResult.Method. Direct prints report the
// transport name instead.
const (
	MethodNative  = "native"
	MethodBrowser = "browser"
)

// ErrorKind classifies a failed dispatch.
type ErrorKind string

const (
	ErrorConfiguration ErrorKind = "configuration"
	ErrorNegotiation   ErrorKind = "negotiation"
	ErrorTransfer      ErrorKind = "transfer"
	ErrorUnsupported   ErrorKind = "unsupported"
)

// DefaultPrintTimeout bounds one dispatch end to end.
const DefaultPrintTimeout = 20 * time.Second

// DispatchResult is the outcome of a print request. A failed kitchen or
// counter print never fails the caller's own operation.
type DispatchResult struct {
	Success bool      `json:"success"`
	Method  string    `json:"method"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"error_kind,omitempty"`
}

// Retryable reports whether repeating the dispatch may succeed.
func (r DispatchResult) Retryable() bool {
	return !r.Success && (r.Kind == ErrorTransfer || r.Kind == ErrorNegotiation)
}

// DeviceSender writes to printers the process drives itself.
type DeviceSender interface {
	Supports(t printer.Transport) bool
	Send(ctx context.Context, t printer.Target, data []byte) error
}

// PrintJobRecorder persists the audit row of a dispatch.
type PrintJobRecorder interface {
	Create(ctx context.Context, job *entity.PrintJob) error
}

// DispatcherOptions holds the optional collaborators of a PrintDispatcher.
type DispatcherOptions struct {
	// Bridge marks a native host. Nil means direct printing only.
	Bridge   bridge.Bridge
	Numbers  receipt.BillNumberer
	Profiles repository.BusinessProfileRepository
	Jobs     PrintJobRecorder
	Timeout  time.Duration
	Logger   *slog.Logger
}

// PrintDispatcher picks the printer for a role, renders the document for it
// and sends it over the right transport.
type PrintDispatcher struct {
	printers repository.PrinterRepository
	devices  DeviceSender
	bridge   bridge.Bridge
	numbers  receipt.BillNumberer
	profiles repository.BusinessProfileRepository
	jobs     PrintJobRecorder
	timeout  time.Duration
	log      *slog.Logger
}

// NewPrintDispatcher creates a dispatcher.
func NewPrintDispatcher(printers repository.PrinterRepository, devices DeviceSender, opts DispatcherOptions) *PrintDispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultPrintTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &PrintDispatcher{
		printers: printers,
		devices:  devices,
		bridge:   opts.Bridge,
		numbers:  opts.Numbers,
		profiles: opts.Profiles,
		jobs:     opts.Jobs,
		timeout:  opts.Timeout,
		log:      opts.Logger,
	}
}

// Native reports whether a bridge is attached.
func (d *PrintDispatcher) Native() bool {
	return d.bridge != nil
}

type dispatchError struct {
	kind ErrorKind
	err  error
}

func (e *dispatchError) Error() string { return e.err.Error() }
func (e *dispatchError) Unwrap() error { return e.err }

func failure(kind ErrorKind, err error) error {
	return &dispatchError{kind: kind, err: err}
}

// DispatchBill prints a bill on the printer serving role. A cash sale on the
// counter also opens the cash drawer.
func (d *PrintDispatcher) DispatchBill(ctx context.Context, role enum.PrinterRole, bill *entity.BillData) DispatchResult {
	return d.dispatchBill(ctx, role, bill, d.numbers)
}

// DispatchNumberedBill prints a bill whose BillNumber was assigned before the
// dispatch, so repeating it never takes another number.
func (d *PrintDispatcher) DispatchNumberedBill(ctx context.Context, role enum.PrinterRole, bill *entity.BillData) DispatchResult {
	return d.dispatchBill(ctx, role, bill, nil)
}

func (d *PrintDispatcher) dispatchBill(ctx context.Context, role enum.PrinterRole, bill *entity.BillData, numbers receipt.BillNumberer) (res DispatchResult) {
	defer d.recoverInto(&res, "bill")
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	job := &entity.PrintJob{Document: entity.DocumentBill, Role: role}
	if bill != nil {
		job.Reference = bill.BillID
	}

	p, err := d.lookup(ctx, role)
	if err != nil {
		return d.finish(ctx, job, nil, "", 0, err)
	}
	if bill == nil {
		return d.finish(ctx, job, p, "", 0, failure(ErrorConfiguration, errors.New("no bill to print")))
	}

	bill = d.withProfile(ctx, bill)
	layout, err := receipt.BuildBillLayout(ctx, bill, p.Format, numbers)
	if err != nil {
		return d.finish(ctx, job, p, "", 0, failure(ErrorConfiguration, err))
	}
	drawer := role == enum.PrinterRoleCounter && !bill.IsReprint && (bill.IsCashSale() || p.OpenDrawer)

	method, n, err := d.deliver(ctx, p, layout, drawer)
	return d.finish(ctx, job, p, method, n, err)
}

// DispatchKOT prints a kitchen order ticket on the printer serving role.
func (d *PrintDispatcher) DispatchKOT(ctx context.Context, role enum.PrinterRole, kot *entity.KOTData) (res DispatchResult) {
	defer d.recoverInto(&res, "kot")
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	job := &entity.PrintJob{Document: entity.DocumentKOT, Role: role}
	if kot != nil {
		job.Reference = "KOT-" + kot.DisplayNumber()
	}

	p, err := d.lookup(ctx, role)
	if err != nil {
		return d.finish(ctx, job, nil, "", 0, err)
	}
	layout, err := receipt.BuildKOTLayout(kot, p.Format)
	if err != nil {
		return d.finish(ctx, job, p, "", 0, failure(ErrorConfiguration, err))
	}

	method, n, err := d.deliver(ctx, p, layout, false)
	return d.finish(ctx, job, p, method, n, err)
}

// OpenCashDrawer pulses the drawer wired to the counter printer.
func (d *PrintDispatcher) OpenCashDrawer(ctx context.Context) (res DispatchResult) {
	defer d.recoverInto(&res, "drawer")
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	p, err := d.lookup(ctx, enum.PrinterRoleCounter)
	if err != nil {
		return resultOf("", err)
	}
	if d.bridge != nil {
		if r := d.bridge.OpenCashDrawer(ctx, p); !r.Success {
			return resultOf(MethodNative, failure(ErrorTransfer, errors.New(r.Error)))
		}
		return resultOf(MethodNative, nil)
	}
	data := printer.NewBuilder(p.PaperWidth()).Init().OpenDrawer().Build()
	method, err := d.direct(ctx, p, data)
	return resultOf(method, err)
}

func (d *PrintDispatcher) lookup(ctx context.Context, role enum.PrinterRole) (*entity.Printer, error) {
	p, err := d.printers.FindActiveByRole(ctx, role)
	if err != nil {
		return nil, failure(ErrorConfiguration, fmt.Errorf("load %s printer: %w", role, err))
	}
	if p == nil {
		return nil, failure(ErrorConfiguration, fmt.Errorf("no active %s printer configured", role))
	}
	if err := p.Validate(); err != nil {
		return nil, failure(ErrorConfiguration, fmt.Errorf("%s printer %q: %w", role, p.Name, err))
	}
	return p, nil
}

// withProfile returns a copy of bill with outlet fields filled from the stored profile.
func (d *PrintDispatcher) withProfile(ctx context.Context, bill *entity.BillData) *entity.BillData {
	if d.profiles == nil {
		return bill
	}
	profile, err := d.profiles.Get(ctx)
	if err != nil {
		d.log.Warn("business profile unavailable", "error", err)
		return bill
	}
	if profile == nil {
		return bill
	}
	cp := *bill
	profile.Apply(&cp)
	return &cp
}

func encode(p *entity.Printer, l *receipt.Layout) ([]byte, error) {
	if p.RasterMode {
		data, err := receipt.RenderRaster(l)
		if err != nil {
			return nil, failure(ErrorConfiguration, err)
		}
		return data, nil
	}
	return receipt.RenderESCPOS(l), nil
}

// deliver returns the method used, the byte count sent and the failure if any.
func (d *PrintDispatcher) deliver(ctx context.Context, p *entity.Printer, l *receipt.Layout, drawer bool) (string, int, error) {
	if d.bridge == nil {
		l.OpenDrawer = drawer
		data, err := encode(p, l)
		if err != nil {
			return MethodBrowser, 0, err
		}
		method, err := d.direct(ctx, p, data)
		return method, len(data), err
	}

	n, err := d.native(ctx, p, l)
	if err == nil && drawer {
		if r := d.bridge.OpenCashDrawer(ctx, p); !r.Success {
			d.log.Warn("cash drawer did not open", "printer", p.Name, "error", r.Error)
		}
	}
	return MethodNative, n, err
}

func (d *PrintDispatcher) native(ctx context.Context, p *entity.Printer, l *receipt.Layout) (int, error) {
	var r bridge.Result
	var n int
	switch p.Type {
	case enum.TransportUSB, enum.TransportNetwork:
		data, err := encode(p, l)
		if err != nil {
			return 0, err
		}
		n = len(data)
		if p.Type == enum.TransportUSB {
			r = d.bridge.PrintToUSB(ctx, uint16(p.VendorID), uint16(p.ProductID), data, p.Format)
		} else {
			r = d.bridge.PrintToNetwork(ctx, p.IPAddress, p.NetworkPort(), data, p.Format)
		}
	case enum.TransportSystem:
		switch hp := d.bridge.(type) {
		case bridge.HTMLPrinter:
			doc, err := receipt.RenderHTML(l)
			if err != nil {
				return 0, failure(ErrorConfiguration, err)
			}
			n = len(doc)
			r = hp.PrintHTML(ctx, p.SystemName, doc, p.Format)
		case bridge.ImagePrinter:
			png, err := receipt.RenderPNG(l)
			if err != nil {
				return 0, failure(ErrorConfiguration, err)
			}
			n = len(png)
			r = hp.PrintImage(ctx, p.SystemName, png, p.Format)
		default:
			data := receipt.RenderESCPOS(l)
			n = len(data)
			r = d.bridge.PrintToSystem(ctx, p.SystemName, data)
		}
	default:
		data, err := encode(p, l)
		if err != nil {
			return 0, err
		}
		if _, err := d.direct(ctx, p, data); err != nil {
			return len(data), err
		}
		return len(data), nil
	}
	if !r.Success {
		return n, failure(ErrorTransfer, errors.New(r.Error))
	}
	return n, nil
}

// direct sends through the connection manager. Network and system printers
// cannot be reached without a bridge.
func (d *PrintDispatcher) direct(ctx context.Context, p *entity.Printer, data []byte) (string, error) {
	t := p.Target()
	switch p.Type {
	case enum.TransportNetwork, enum.TransportSystem:
		return MethodBrowser, failure(ErrorUnsupported, fmt.Errorf("%s printers need the native print bridge", p.Type))
	}
	if d.devices == nil || !d.devices.Supports(t.Transport) {
		return MethodBrowser, failure(ErrorUnsupported, fmt.Errorf("%s printing is not available on this host", p.Type))
	}
	if err := d.devices.Send(ctx, t, data); err != nil {
		kind := ErrorTransfer
		if errors.Is(err, printer.ErrDeviceNotFound) || errors.Is(err, printer.ErrNoWritableEndpoint) {
			kind = ErrorNegotiation
		}
		return MethodBrowser, failure(kind, err)
	}
	return p.Type.String(), nil
}

func resultOf(method string, err error) DispatchResult {
	if err == nil {
		return DispatchResult{Success: true, Method: method}
	}
	if method == "" {
		method = MethodBrowser
	}
	res := DispatchResult{Method: method, Error: err.Error(), Kind: ErrorTransfer}
	var de *dispatchError
	if errors.As(err, &de) {
		res.Kind = de.kind
	}
	return res
}

func (d *PrintDispatcher) finish(ctx context.Context, job *entity.PrintJob, p *entity.Printer, method string, n int, err error) DispatchResult {
	res := resultOf(method, err)

	log := d.log.With("document", job.Document, "reference", job.Reference, "role", job.Role.String(), "method", res.Method)
	if p != nil {
		log = log.With("printer", p.Name, "transport", p.Type.String())
	}
	if res.Success {
		log.Info("document printed", "bytes", n)
	} else {
		log.Warn("print failed", "error", res.Error, "error_kind", string(res.Kind))
	}

	if d.jobs == nil {
		return res
	}
	job.Method = res.Method
	job.Bytes = n
	job.Attempts = 1
	job.Error = res.Error
	job.Status = enum.PrintJobPrinted
	if !res.Success {
		job.Status = enum.PrintJobFailed
	}
	if p != nil {
		id := p.ID
		job.PrinterID = &id
		job.PrinterName = p.Name
	}
	// the dispatch deadline may already be spent
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := d.jobs.Create(recCtx, job); err != nil {
		log.Error("failed to record print job", "error", err)
	}
	return res
}

func (d *PrintDispatcher) recoverInto(res *DispatchResult, doc string) {
	if r := recover(); r != nil {
		d.log.Error("print dispatch panicked", "document", doc, "panic", r)
		*res = DispatchResult{Method: MethodBrowser, Error: fmt.Sprintf("print failed: %v", r), Kind: ErrorTransfer}
	}
}

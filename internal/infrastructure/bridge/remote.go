package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
)

// Remote forwards bridge calls to another print agent over HTTP, for a POS
// whose printers hang off a different machine.
type Remote struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemote creates a bridge for the agent at baseURL. token is sent as a bearer token.
func NewRemote(baseURL, token string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (r *Remote) call(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("bridge: encode %s: %w", path, err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+"/api/v1/bridge"+path, rd)
	if err != nil {
		return fmt.Errorf("bridge: build %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge: %s: %w", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&env); err != nil {
		return fmt.Errorf("bridge: %s: status %d: %w", path, resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return fmt.Errorf("bridge: %s: status %d: %s", path, resp.StatusCode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("bridge: decode %s: %w", path, err)
		}
	}
	return nil
}

func (r *Remote) result(ctx context.Context, path string, body any) Result {
	var res Result
	if err := r.call(ctx, http.MethodPost, path, body, &res); err != nil {
		return Fail(err)
	}
	return res
}

func (r *Remote) PrintToUSB(ctx context.Context, vid, pid uint16, data []byte, format enum.PaperFormat) Result {
	return r.result(ctx, "/usb", USBRequest{VendorID: vid, ProductID: pid, Data: data, Format: format})
}

func (r *Remote) PrintToNetwork(ctx context.Context, ip string, port int, data []byte, format enum.PaperFormat) Result {
	return r.result(ctx, "/network", NetworkRequest{IP: ip, Port: port, Data: data, Format: format})
}

func (r *Remote) PrintToSystem(ctx context.Context, name string, data []byte) Result {
	return r.result(ctx, "/system", SystemRequest{Name: name, Data: data})
}

// PrintImage forwards a PNG to the remote agent's spooler.
func (r *Remote) PrintImage(ctx context.Context, name string, png []byte, format enum.PaperFormat) Result {
	return r.result(ctx, "/image", ImageRequest{Name: name, PNG: png, Format: format})
}

// PrintHTML forwards an HTML receipt to the remote agent's spooler.
func (r *Remote) PrintHTML(ctx context.Context, name, html string, format enum.PaperFormat) Result {
	return r.result(ctx, "/html", HTMLRequest{Name: name, HTML: html, Format: format})
}

func (r *Remote) OpenCashDrawer(ctx context.Context, p *entity.Printer) Result {
	if p == nil {
		return Fail(errNoPrinter)
	}
	return r.result(ctx, "/drawer", PrinterRequest{Printer: *p})
}

func (r *Remote) TestPrinter(ctx context.Context, p *entity.Printer) Result {
	if p == nil {
		return Fail(errNoPrinter)
	}
	return r.result(ctx, "/test", PrinterRequest{Printer: *p})
}

func (r *Remote) GetPrinterStatus(ctx context.Context, p *entity.Printer) PrinterStatus {
	if p == nil {
		return PrinterStatus{Detail: errNoPrinter.Error()}
	}
	var st PrinterStatus
	if err := r.call(ctx, http.MethodPost, "/status", PrinterRequest{Printer: *p}, &st); err != nil {
		return PrinterStatus{Detail: err.Error()}
	}
	return st
}

func (r *Remote) DiscoverPrinters(ctx context.Context) ([]DiscoveredPrinter, error) {
	var found []DiscoveredPrinter
	if err := r.call(ctx, http.MethodGet, "/discover", nil, &found); err != nil {
		return nil, err
	}
	return found, nil
}

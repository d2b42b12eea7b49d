package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/internal/infrastructure/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBridge struct {
	mu      sync.Mutex
	html    []string
	fail    error
	usb     [][]byte
	drawers []string
	found   []bridge.DiscoveredPrinter
	scanErr error
}

func (b *stubBridge) result() bridge.Result {
	if b.fail != nil {
		return bridge.Fail(b.fail)
	}
	return bridge.Ok()
}

func (b *stubBridge) PrintToUSB(_ context.Context, _, _ uint16, data []byte, _ enum.PaperFormat) bridge.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.usb = append(b.usb, data)
	return b.result()
}

func (b *stubBridge) PrintToNetwork(context.Context, string, int, []byte, enum.PaperFormat) bridge.Result {
	return b.result()
}

func (b *stubBridge) PrintToSystem(context.Context, string, []byte) bridge.Result {
	return b.result()
}

func (b *stubBridge) OpenCashDrawer(_ context.Context, p *entity.Printer) bridge.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drawers = append(b.drawers, p.Name)
	return b.result()
}

func (b *stubBridge) GetPrinterStatus(context.Context, *entity.Printer) bridge.PrinterStatus {
	return bridge.PrinterStatus{Online: b.fail == nil, Detail: "probe"}
}

func (b *stubBridge) TestPrinter(context.Context, *entity.Printer) bridge.Result {
	return b.result()
}

func (b *stubBridge) DiscoverPrinters(context.Context) ([]bridge.DiscoveredPrinter, error) {
	return b.found, b.scanErr
}

type htmlStubBridge struct{ stubBridge }

func (b *htmlStubBridge) PrintHTML(_ context.Context, name, html string, _ enum.PaperFormat) bridge.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.html = append(b.html, name+":"+html)
	return b.result()
}

func newBridgeServer(t *testing.T, b bridge.Bridge) *bridge.Remote {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewBridgeHandler(b)
	r := gin.New()
	g := r.Group("/api/v1/bridge")
	g.POST("/usb", h.USB)
	g.POST("/network", h.Network)
	g.POST("/system", h.System)
	g.POST("/image", h.Image)
	g.POST("/html", h.HTML)
	g.POST("/drawer", h.Drawer)
	g.POST("/test", h.Test)
	g.POST("/status", h.Status)
	g.GET("/discover", h.Discover)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return bridge.NewRemote(srv.URL, "", 0)
}

func TestRemoteBridgeRoundTrip(t *testing.T) {
	stub := &stubBridge{found: []bridge.DiscoveredPrinter{{Type: enum.TransportUSB, Name: "POS-80", VendorID: 0x0416, ProductID: 0x5011}}}
	remote := newBridgeServer(t, stub)
	ctx := context.Background()

	res := remote.PrintToUSB(ctx, 0x0416, 0x5011, []byte{0x1B, 0x40, 0x00, 0xFF}, enum.PaperFormat80mm)
	require.True(t, res.Success, res.Error)
	require.Len(t, stub.usb, 1)
	assert.Equal(t, []byte{0x1B, 0x40, 0x00, 0xFF}, stub.usb[0])

	counter := &entity.Printer{Name: "Counter", Role: enum.PrinterRoleCounter, Type: enum.TransportNetwork, IPAddress: "10.0.0.9"}
	assert.True(t, remote.OpenCashDrawer(ctx, counter).Success)
	assert.Equal(t, []string{"Counter"}, stub.drawers)

	assert.True(t, remote.PrintToNetwork(ctx, "10.0.0.9", 9100, []byte("kot"), enum.PaperFormat58mm).Success)
	assert.True(t, remote.PrintToSystem(ctx, "TM-T82", []byte("bill")).Success)
	assert.True(t, remote.TestPrinter(ctx, counter).Success)

	st := remote.GetPrinterStatus(ctx, counter)
	assert.True(t, st.Online)
	assert.Equal(t, "probe", st.Detail)

	found, err := remote.DiscoverPrinters(ctx)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "POS-80", found[0].Name)
	assert.Equal(t, enum.TransportUSB, found[0].Type)
}

func TestRemoteBridgeCarriesFailures(t *testing.T) {
	stub := &stubBridge{fail: errors.New("paper out")}
	remote := newBridgeServer(t, stub)

	res := remote.PrintToUSB(context.Background(), 1, 2, []byte("x"), enum.PaperFormat58mm)
	assert.False(t, res.Success)
	assert.Equal(t, "paper out", res.Error)
}

func TestRemoteBridgeImageNotSupported(t *testing.T) {
	remote := newBridgeServer(t, &stubBridge{})

	res := remote.PrintImage(context.Background(), "TM-T82", []byte("\x89PNG"), enum.PaperFormat80mm)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "501")
}

func TestBridgeDiscoverToleratesNoDevice(t *testing.T) {
	remote := newBridgeServer(t, &stubBridge{scanErr: bridge.ErrNoDevice})

	found, err := remote.DiscoverPrinters(context.Background())
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestBridgeDiscoverFailure(t *testing.T) {
	remote := newBridgeServer(t, &stubBridge{scanErr: errors.New("adapter busy")})

	_, err := remote.DiscoverPrinters(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adapter busy")
}

func TestBridgeRejectsMalformedBody(t *testing.T) {
	remote := newBridgeServer(t, &stubBridge{})

	res := remote.PrintToSystem(context.Background(), "", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "400")
}

func TestRemoteBridgePrintHTML(t *testing.T) {
	stub := &htmlStubBridge{}
	remote := newBridgeServer(t, stub)

	res := remote.PrintHTML(context.Background(), "TM-T82", "<html>bill</html>", enum.PaperFormat80mm)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, []string{"TM-T82:<html>bill</html>"}, stub.html)

	plain := newBridgeServer(t, &stubBridge{})
	res = plain.PrintHTML(context.Background(), "TM-T82", "<html>bill</html>", enum.PaperFormat80mm)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "501")
}

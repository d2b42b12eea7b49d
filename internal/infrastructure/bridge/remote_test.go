package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": success, "message": "ok", "data": data})
}

func TestRemotePrintToUSB(t *testing.T) {
	var got USBRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bridge/usb", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeEnvelope(w, http.StatusOK, true, Result{Success: true})
	}))
	defer srv.Close()

	r := NewRemote(srv.URL+"/", "secret", 0)
	res := r.PrintToUSB(context.Background(), 0x0416, 0x5011, []byte{0x1B, 0x40}, enum.PaperFormat80mm)

	assert.True(t, res.Success, res.Error)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, uint16(0x0416), got.VendorID)
	assert.Equal(t, []byte{0x1B, 0x40}, got.Data)
	assert.Equal(t, enum.PaperFormat80mm, got.Format)
}

func TestRemoteSurfacesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/bridge/network":
			writeEnvelope(w, http.StatusOK, true, Result{Error: "connection refused"})
		case "/api/v1/bridge/system":
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Invalid token"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "", 0)

	res := r.PrintToNetwork(context.Background(), "10.0.0.2", 9100, []byte("x"), enum.PaperFormat58mm)
	assert.False(t, res.Success)
	assert.Equal(t, "connection refused", res.Error)

	res = r.PrintToSystem(context.Background(), "Bar", []byte("x"))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "status 401")
	assert.Contains(t, res.Error, "Invalid token")
}

func TestRemoteDiscoverAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/bridge/discover":
			assert.Equal(t, http.MethodGet, r.Method)
			writeEnvelope(w, http.StatusOK, true, []DiscoveredPrinter{{Type: enum.TransportSystem, Name: "Bar", SystemName: "Bar"}})
		case "/api/v1/bridge/status":
			var req PrinterRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			writeEnvelope(w, http.StatusOK, true, PrinterStatus{Online: req.Printer.Name == "Bar", Detail: "idle"})
		}
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "", 0)
	found, err := r.DiscoverPrinters(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, enum.TransportSystem, found[0].Type)

	st := r.GetPrinterStatus(context.Background(), &entity.Printer{Name: "Bar"})
	assert.True(t, st.Online)
	assert.Equal(t, "idle", st.Detail)
}

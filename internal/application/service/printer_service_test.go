package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/infrastructure/bridge"
	"github.com/sangkips/posprint/internal/infrastructure/repository"
	"github.com/sangkips/posprint/pkg/apperror"
	"github.com/sangkips/posprint/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLink struct{ data []byte }

func (l *memLink) WritePacket(_ context.Context, p []byte) error {
	l.data = append(l.data, p...)
	return nil
}

func (l *memLink) Close() error { return nil }

func newPrinterService(t *testing.T, b *fakeBridge, printers ...entity.Printer) (*PrinterService, *memLink, []entity.Printer) {
	t.Helper()
	link := &memLink{}
	conns := printer.NewConnectionManager(map[printer.Transport]printer.Connector{
		printer.TransportUSB: printer.ConnectorFunc(func(context.Context, printer.Target) (printer.Link, error) { return link, nil }),
	})
	repo := repository.NewStaticPrinterRepository(printers)
	list, err := repo.List(context.Background())
	require.NoError(t, err)

	var br bridge.Bridge
	if b != nil {
		br = b
	}
	svc := NewPrinterService(repo, repository.NewMemoryPrintJobRepository(0), conns, br, nil)
	return svc, link, list
}

func TestPrinterStatusUnknownID(t *testing.T) {
	svc, _, _ := newPrinterService(t, nil, counterUSB)
	_, err := svc.GetStatus(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestDirectTestPrintAndStatus(t *testing.T) {
	svc, link, list := newPrinterService(t, nil, counterUSB)
	id := list[0].ID

	res, err := svc.TestPrint(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "usb", res.Method)
	assert.Contains(t, string(link.data), "TEST PRINT")

	status, err := svc.GetStatus(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, status.Configured)
	assert.True(t, status.Online)
	require.Len(t, svc.Connections(), 1)

	require.NoError(t, svc.Disconnect(context.Background(), id))
	status, err = svc.GetStatus(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, status.Online)
}

func TestDirectTestPrintNeedsBridgeForNetwork(t *testing.T) {
	svc, _, list := newPrinterService(t, nil, kitchenLAN)
	res, err := svc.TestPrint(context.Background(), list[0].ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrorUnsupported, res.Kind)
}

func TestNativeTestPrintAndDiscovery(t *testing.T) {
	b := &fakeBridge{}
	svc, _, list := newPrinterService(t, b, kitchenLAN)

	res, err := svc.TestPrint(context.Background(), list[0].ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, MethodNative, res.Method)
	assert.Equal(t, []string{"test"}, b.calls)

	status, err := svc.GetStatus(context.Background(), list[0].ID)
	require.NoError(t, err)
	assert.True(t, status.Online)

	_, err = svc.Discover(context.Background())
	assert.NoError(t, err)
}

func TestDiscoveryWithoutBridge(t *testing.T) {
	svc, _, _ := newPrinterService(t, nil)
	_, err := svc.Discover(context.Background())
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

package receipt

import (
	"context"
	"errors"
	"testing"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNumberer struct {
	calls int
	next  int64
	err   error
}

func (n *countingNumberer) NextBillNumber(context.Context) (int64, error) {
	n.calls++
	return n.next, n.err
}

func billInfo(t *testing.T, l *Layout) BillInfo {
	t.Helper()
	for _, s := range l.Sections {
		if bi, ok := s.(BillInfo); ok {
			return bi
		}
	}
	t.Fatal("no bill info section")
	return BillInfo{}
}

func TestBuildBillLayoutAssignsNumber(t *testing.T) {
	numbers := &countingNumberer{next: 1001}
	bill := sampleBill()

	l, err := BuildBillLayout(context.Background(), bill, enum.PaperFormat80mm, numbers)
	require.NoError(t, err)
	assert.Equal(t, 1, numbers.calls)
	assert.Equal(t, "1001", billInfo(t, l).BillNumber)
	assert.Equal(t, int64(41), bill.BillNumber, "bill is not modified")
	assert.Len(t, l.Sections, 6)
}

func TestBuildBillLayoutReprintKeepsNumber(t *testing.T) {
	numbers := &countingNumberer{next: 1001}
	bill := sampleBill()
	bill.IsReprint = true

	l, err := BuildBillLayout(context.Background(), bill, enum.PaperFormat58mm, numbers)
	require.NoError(t, err)
	assert.Zero(t, numbers.calls)
	assert.Equal(t, "41", billInfo(t, l).BillNumber)

	box := l.Sections[1].(InvoiceBox)
	assert.True(t, box.Duplicate)
	assert.Equal(t, "TAX INVOICE", box.Title)

	l, err = BuildBillLayout(context.Background(), sampleBill(), enum.PaperFormat58mm, nil)
	require.NoError(t, err)
	assert.Equal(t, "41", billInfo(t, l).BillNumber)
}

func TestBuildBillLayoutNumbererError(t *testing.T) {
	_, err := BuildBillLayout(context.Background(), sampleBill(), enum.PaperFormat58mm, &countingNumberer{err: errors.New("db down")})
	assert.ErrorContains(t, err, "db down")
}

func TestBuildBillLayoutParcelAndPayments(t *testing.T) {
	bill := sampleBill()
	bill.IsParcel = true
	bill.TokenNumber = 23
	bill.PaymentMethod = "split"
	bill.SplitPayments = []entity.SplitPayment{
		{Method: "cash", Amount: dec("200")},
		{Method: "upi", Amount: dec("273")},
	}

	l, err := BuildBillLayout(context.Background(), bill, enum.PaperFormat80mm, nil)
	require.NoError(t, err)
	assert.Equal(t, "Token 23", billInfo(t, l).Seat)

	totals := l.Sections[4].(Totals)
	require.Len(t, totals.Payments, 2)
	assert.Equal(t, TotalLine{Label: "Cash", Value: "200.00"}, totals.Payments[0])
	assert.Equal(t, TotalLine{Label: "UPI", Value: "273.00"}, totals.Payments[1])
}

func TestBuildKOTLayout(t *testing.T) {
	kot := sampleKOT()
	kot.IsParcel = true
	kot.TokenNumber = 9

	l, err := BuildKOTLayout(kot, enum.PaperFormat58mm)
	require.NoError(t, err)
	head := l.Sections[0].(KOTHeader)
	assert.Equal(t, "PARCEL KOT", head.Title)
	assert.Equal(t, "07", head.Number)
	assert.Equal(t, "Token 9", head.Seat)

	items := l.Sections[1].(KOTItems)
	assert.Equal(t, "Dal Makhani (Half)", items.Rows[1].Name)

	_, err = BuildKOTLayout(nil, enum.PaperFormat58mm)
	assert.Error(t, err)
}

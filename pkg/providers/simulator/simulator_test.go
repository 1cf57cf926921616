package simulator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/internal/inquiry"
	"github.com/bher20/tagihanpln/pkg/providers"
)

func TestSimulateOneMonth(t *testing.T) {
	res := Simulate("530012345678")

	require.True(t, res.OK())
	assert.Equal(t, Key, res.Provider)
	b := res.Bill
	assert.Equal(t, "530012345678", b.CustomerNumber)
	assert.Equal(t, "JOHN DOE", b.CustomerName)
	assert.Equal(t, "R1/1300 VA", b.TariffPower)
	assert.Equal(t, "FEB 2026 (1 Bulan)", b.Period)
	assert.Equal(t, int64(300000), b.BillAmount)
	assert.Equal(t, int64(2500), b.AdminFee)
	assert.Equal(t, int64(302500), b.TotalPayment)
	assert.Equal(t, bill.Unknown, b.StandMeter)
	require.Len(t, b.DetailBills, 1)
	assert.Equal(t, bill.DetailBill{Period: "FEB 2026", Amount: 300000}, b.DetailBills[0])
}

func TestSimulateFourMonths(t *testing.T) {
	res := Simulate("531000000002")

	require.True(t, res.OK())
	b := res.Bill
	assert.Equal(t, "JANE DOE", b.CustomerName)
	assert.Equal(t, "R1/2200 VA", b.TariffPower)
	assert.Equal(t, 4, b.BillCount)
	assert.Equal(t, int64(1200000), b.BillAmount)
	assert.Equal(t, int64(10000), b.AdminFee)
	assert.Equal(t, int64(1210000), b.TotalPayment)

	var periods []string
	for _, d := range b.DetailBills {
		periods = append(periods, d.Period)
	}
	assert.Equal(t, []string{"NOV 2025", "DES 2025", "JAN 2026", "FEB 2026"}, periods)
	assert.Equal(t, int64(5000), b.DetailBills[0].Penalty)
	assert.Equal(t, int64(0), b.DetailBills[3].Penalty)
}

func TestSimulateFailures(t *testing.T) {
	tests := map[string]string{
		"532000000001": "Tagihan sudah dibayar",
		"533100000001": "ID Pelanggan tidak ditemukan",
		"533500000001": "Tidak ada tagihan tersedia",
	}
	for number, msg := range tests {
		res := Simulate(number)
		assert.False(t, res.OK(), number)
		assert.Equal(t, msg, res.Message, number)
		assert.Equal(t, []string{Key + ": " + msg}, res.Errors, number)
	}
}

func TestSimulateDefault(t *testing.T) {
	res := Simulate("999999999999")

	require.True(t, res.OK())
	assert.Equal(t, "PELANGGAN TEST", res.Bill.CustomerName)
	assert.Equal(t, "999999999999", res.Bill.CustomerNumber)
	assert.Equal(t, "R1/900 VA", res.Bill.TariffPower)
	assert.Equal(t, int64(152500), res.Bill.TotalPayment)
}

func TestSimulateIsDeterministic(t *testing.T) {
	for _, n := range []string{"530012345678", "531000000002", "532000000001", "123"} {
		assert.Equal(t, Simulate(n), Simulate(n), n)
	}
}

func TestInquire(t *testing.T) {
	var inq inquiry.Inquirer = New()

	res := inq.Inquire(context.Background(), " ")
	assert.Equal(t, inquiry.MsgRequired, res.Message)

	res = inq.Inquire(context.Background(), " 530012345678 ")
	require.True(t, res.OK())
	assert.Equal(t, "530012345678", res.Bill.CustomerNumber)
}

func TestProviderInOrchestrator(t *testing.T) {
	reg, err := providers.NewRegistry(New())
	require.NoError(t, err)

	res := inquiry.NewService(reg).Inquire(context.Background(), "532000000001")
	assert.Equal(t, "Tagihan sudah dibayar", res.Message)
	assert.Equal(t, []string{Key + ": Tagihan sudah dibayar"}, res.Errors)
}

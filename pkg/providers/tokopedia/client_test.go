package tokopedia

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/pkg/browser/browsertest"
	"github.com/bher20/tagihanpln/pkg/providers"
)

const resultPage = `<html><head><script>var x = "Tagihan Rp 1";</script></head><body>
<h1>Tagihan Listrik PLN</h1>
<div class="detail">
  <div><span>Nama Pelanggan</span><span>JOHN DOE</span></div>
  <div><span>Tarif/Daya</span><span>R1/1300 VA</span></div>
  <div><span>Periode</span><span>Feb 2026</span></div>
  <div><span>Tagihan</span><span>Rp 300.000</span></div>
  <div><span>Biaya Admin</span><span>Rp 2.500</span></div>
  <div><span>Total Tagihan</span><span>Rp 302.500</span></div>
</div>
<button>Bayar</button>
</body></html>`

func TestParsePage(t *testing.T) {
	raw, err := ParsePage(resultPage, "530000000001")
	require.NoError(t, err)

	rec, err := bill.Normalize(bill.FlatMapping, raw, "530000000001")
	require.NoError(t, err)
	assert.Equal(t, "JOHN DOE", rec.CustomerName)
	assert.Equal(t, "R1/1300 VA", rec.TariffPower)
	assert.Equal(t, "FEB 2026", rec.Period)
	assert.Equal(t, int64(300000), rec.BillAmount)
	assert.Equal(t, int64(2500), rec.AdminFee)
	assert.Equal(t, int64(302500), rec.TotalPayment)
	assert.False(t, rec.TotalMismatch)
}

func TestParsePageWithoutAmount(t *testing.T) {
	_, err := ParsePage(`<html><body><p>Nomor meter tidak valid</p></body></html>`, "1")

	var pe *providers.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, providers.KindProtocol, pe.Kind)
	assert.Equal(t, "bill details not found on page", pe.Message)
}

func TestSubmit(t *testing.T) {
	sess := &browsertest.Session{HTML: resultPage, Buttons: []string{"Cek Tagihan"}}
	c := New(Config{Timeout: time.Second, Settle: 10 * time.Millisecond}, &browsertest.Automation{Session: sess})

	raw, err := c.Submit(context.Background(), "530000000001")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "JOHN DOE")
	assert.Equal(t, []string{"Cek Tagihan"}, sess.Clicked)
	assert.Equal(t, 0, sess.Enter)
	assert.Equal(t, 1, sess.Closed)
	assert.Equal(t, providers.KindBrowser, c.Spec().Kind)
}

func TestSubmitPressesEnterWithoutButton(t *testing.T) {
	sess := &browsertest.Session{HTML: resultPage}
	c := New(Config{Settle: 10 * time.Millisecond}, &browsertest.Automation{Session: sess})

	_, err := c.Submit(context.Background(), "530000000001")
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Enter)
	assert.Equal(t, 1, sess.Closed)
}

func TestSubmitTimesOutWhileSettling(t *testing.T) {
	sess := &browsertest.Session{HTML: resultPage}
	c := New(Config{Settle: time.Minute}, &browsertest.Automation{Session: sess})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Submit(ctx, "1")
	assert.Equal(t, providers.KindTimeout, providers.KindOf(err))
	assert.Equal(t, 1, sess.Closed)
}

func TestParsePageLooseLabels(t *testing.T) {
	page := `<html><body>
<div><span>Nama Pelanggan</span><span>Budi Santoso</span></div>
<div><span>Jumlah Tagihan</span><span>1 Bulan</span></div>
<div><span>Total Tagihan</span><span>302.500</span></div>
</body></html>`

	raw, err := ParsePage(page, "530000000001")
	require.NoError(t, err)

	rec, err := bill.Normalize(bill.FlatMapping, raw, "530000000001")
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", rec.CustomerName)
	assert.Equal(t, int64(302500), rec.TotalPayment)
	assert.Equal(t, int64(302500), rec.BillAmount)
}

func TestParsePageAmountWithoutCurrency(t *testing.T) {
	page := `<html><body><p>Tagihan: 150000</p><p>Biaya Admin: 2500</p></body></html>`

	raw, err := ParsePage(page, "1")
	require.NoError(t, err)

	rec, err := bill.Normalize(bill.FlatMapping, raw, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(150000), rec.BillAmount)
	assert.Equal(t, int64(2500), rec.AdminFee)
	assert.Equal(t, int64(152500), rec.TotalPayment)
}

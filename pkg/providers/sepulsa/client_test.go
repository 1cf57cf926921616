package sepulsa

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/pkg/browser"
	"github.com/bher20/tagihanpln/pkg/browser/browsertest"
	"github.com/bher20/tagihanpln/pkg/providers"
)

const cart = `{
	"data": {
		"total_excl_fee": 300000,
		"total_incl_fee": "302500",
		"lines": [{
			"attributes": [
				{"option": {"code": "customer_number"}, "value": "530000000001"},
				{"option": {"code": "inquiry_details"}, "value": "{\"Nama Pelanggan\":\"JOHN DOE\",\"Tarif / Daya\":\"R1/1300 VA\",\"Stand Meter\":\"00012345-00012500\",\"Periode\":\"FEB 2026\"}"}
			]
		}]
	}
}`

func newClient(sess *browsertest.Session) *Client {
	return New(Config{
		Timeout:   time.Second,
		CartWait:  50 * time.Millisecond,
		RetryWait: 50 * time.Millisecond,
	}, &browsertest.Automation{Session: sess})
}

func TestSubmitInterceptsCart(t *testing.T) {
	sess := &browsertest.Session{
		// The cart call is triggered by the page as it loads the filled form.
		Initial: map[string][]byte{CartURLPart: []byte(cart)},
	}
	c := newClient(sess)

	raw, err := c.Submit(context.Background(), "530000000001")
	require.NoError(t, err)
	assert.Equal(t, "530000000001", sess.Filled)
	assert.Equal(t, 1, sess.Enter)
	assert.Equal(t, 1, sess.Closed)
	assert.Equal(t, []string{DefaultPageURL}, sess.Navigated)

	rec, err := bill.Normalize(c.Mapping(), raw, "530000000001")
	require.NoError(t, err)
	assert.Equal(t, "JOHN DOE", rec.CustomerName)
	assert.Equal(t, "R1/1300 VA", rec.TariffPower)
	assert.Equal(t, "00012345-00012500", rec.StandMeter)
	assert.Equal(t, int64(300000), rec.BillAmount)
	assert.Equal(t, int64(2500), rec.AdminFee)
	assert.Equal(t, int64(302500), rec.TotalPayment)
}

func TestSubmitFallsBackToButton(t *testing.T) {
	sess := &browsertest.Session{
		Initial:    map[string][]byte{CartURLPart: []byte(`{"data": {"lines": []}}`)},
		AfterClick: map[string][]byte{CartURLPart: []byte(cart)},
		Buttons:    []string{"Lanjutkan"},
	}

	_, err := newClient(sess).Submit(context.Background(), "530000000001")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lanjutkan"}, sess.Clicked)
	assert.Equal(t, 1, sess.Closed)
}

func TestSubmitNoCart(t *testing.T) {
	sess := &browsertest.Session{}

	_, err := newClient(sess).Submit(context.Background(), "1")
	assert.Equal(t, providers.KindProtocol, providers.KindOf(err))
	assert.Equal(t, 1, sess.Closed)
}

func TestSubmitAutomationFailures(t *testing.T) {
	sess := &browsertest.Session{FillErr: browser.ErrNotFound}
	_, err := newClient(sess).Submit(context.Background(), "1")
	assert.Equal(t, providers.KindProtocol, providers.KindOf(err))
	assert.Equal(t, 1, sess.Closed)

	sess = &browsertest.Session{NavigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	_, err = newClient(sess).Submit(context.Background(), "1")
	assert.Equal(t, providers.KindTransport, providers.KindOf(err))
	assert.Equal(t, 1, sess.Closed)

	c := New(Config{}, &browsertest.Automation{StartErr: errors.New("no chrome")})
	_, err = c.Submit(context.Background(), "1")
	assert.Equal(t, providers.KindTransport, providers.KindOf(err))
}

func TestFlattenCartWithoutDetails(t *testing.T) {
	raw, err := FlattenCart([]byte(`{"data": {"total_incl_fee": 1000, "lines": [{"attributes": []}]}}`), "9")
	require.NoError(t, err)

	rec, err := bill.Normalize(bill.FlatMapping, raw, "9")
	require.NoError(t, err)
	assert.Equal(t, bill.Unknown, rec.CustomerName)
	assert.Equal(t, int64(1000), rec.TotalPayment)
}

func TestProbe(t *testing.T) {
	c := New(Config{}, &browsertest.Automation{})
	assert.NoError(t, c.Probe(context.Background()))

	c = New(Config{}, &browsertest.Automation{Unavailable: true})
	err := c.Probe(context.Background())
	assert.Equal(t, providers.KindTransport, providers.KindOf(err))
	assert.ErrorIs(t, err, browser.ErrUnavailable)
}

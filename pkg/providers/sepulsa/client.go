// Package sepulsa checks bills through the Sepulsa web checkout. It drives
// the page and reads the cart API response the page itself triggers.
package sepulsa

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/pkg/browser"
	"github.com/bher20/tagihanpln/pkg/providers"
)

const (
	DefaultPageURL = "https://www.sepulsa.com/transaction/pln?type=postpaid"
	// CartURLPart identifies the cart API response carrying the inquiry.
	CartURLPart = "api.sepulsa.com/api/v1/carts"
)

var inputKeywords = []string{"pelanggan", "meter", "nomor"}

type Config struct {
	Key     string
	Name    string
	PageURL string
	Timeout time.Duration
	// CartWait bounds the wait for the cart after pressing Enter.
	CartWait time.Duration
	// RetryWait bounds the second wait after clicking "Lanjutkan".
	RetryWait time.Duration
}

type Client struct {
	cfg  Config
	auto browser.Automation
}

func New(cfg Config, auto browser.Automation) *Client {
	if cfg.Key == "" {
		cfg.Key = "sepulsa"
	}
	if cfg.PageURL == "" {
		cfg.PageURL = DefaultPageURL
	}
	if cfg.CartWait <= 0 {
		cfg.CartWait = 12 * time.Second
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 5 * time.Second
	}
	return &Client{cfg: cfg, auto: auto}
}

func (c *Client) Spec() providers.Spec {
	return providers.Spec{
		Key:     c.cfg.Key,
		Name:    c.cfg.Name,
		Kind:    providers.KindBrowser,
		URL:     c.cfg.PageURL,
		Timeout: c.cfg.Timeout,
	}
}

func (c *Client) Mapping() bill.Mapping { return bill.FlatMapping }

// Probe reports whether a browser can be launched.
func (c *Client) Probe(context.Context) error {
	if !c.auto.Available() {
		return providers.Transport(browser.ErrUnavailable)
	}
	return nil
}

func (c *Client) Submit(ctx context.Context, customerNumber string) (providers.Payload, error) {
	sess, err := c.auto.NewSession(ctx)
	if err != nil {
		return nil, providers.FromContext(ctx, err)
	}
	defer sess.Close()

	carts := sess.Watch(CartURLPart)
	if err := sess.Navigate(ctx, c.cfg.PageURL); err != nil {
		return nil, providers.FromContext(ctx, err)
	}
	if err := sess.FillInput(ctx, inputKeywords, customerNumber); err != nil {
		if errors.Is(err, browser.ErrNotFound) {
			return nil, providers.Protocol("customer number field not found")
		}
		return nil, providers.FromContext(ctx, err)
	}
	if err := sess.PressEnter(ctx); err != nil {
		return nil, providers.FromContext(ctx, err)
	}

	cart := waitCart(ctx, carts, c.cfg.CartWait)
	if cart == nil && ctx.Err() == nil {
		clicked, err := sess.ClickButton(ctx, []string{"Lanjutkan"})
		if err != nil {
			zap.L().Debug("sepulsa: fallback click failed", zap.Error(err))
		}
		if clicked {
			cart = waitCart(ctx, carts, c.cfg.RetryWait)
		}
	}
	if cart == nil {
		if ctx.Err() != nil {
			return nil, providers.Timeout(ctx.Err())
		}
		return nil, providers.Protocol("cart response not received")
	}
	return FlattenCart(cart, customerNumber)
}

// waitCart returns the first cart body with at least one line, or nil when
// d elapses or ctx ends.
func waitCart(ctx context.Context, carts <-chan []byte, d time.Duration) []byte {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case body := <-carts:
			if gjson.GetBytes(body, "data.lines.#").Int() > 0 {
				return body
			}
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

type flatCart struct {
	CustomerNumber string          `json:"customer_number"`
	CustomerName   string          `json:"customer_name,omitempty"`
	TariffPower    string          `json:"tariff_power,omitempty"`
	StandMeter     string          `json:"stand_meter,omitempty"`
	Period         string          `json:"period,omitempty"`
	BillAmount     json.RawMessage `json:"bill_amount,omitempty"`
	TotalPayment   json.RawMessage `json:"total_payment,omitempty"`
}

// FlattenCart unpacks the inquiry_details attribute of the first cart line
// into the flat bill shape. total_excl_fee is the bill and total_incl_fee
// the total; the admin fee is left for the normalizer to derive.
func FlattenCart(cart []byte, customerNumber string) (providers.Payload, error) {
	if !gjson.ValidBytes(cart) {
		return nil, providers.Protocol("invalid cart response")
	}
	data := gjson.GetBytes(cart, "data")

	var details gjson.Result
	data.Get("lines.0.attributes").ForEach(func(_, attr gjson.Result) bool {
		if attr.Get("option.code").String() != "inquiry_details" {
			return true
		}
		if v := attr.Get("value"); v.Type == gjson.String && gjson.Valid(v.Str) {
			details = gjson.Parse(v.Str)
		} else if v.IsObject() {
			details = v
		}
		return false
	})

	out := flatCart{
		CustomerNumber: customerNumber,
		CustomerName:   details.Get("Nama Pelanggan").String(),
		TariffPower:    details.Get("Tarif / Daya").String(),
		StandMeter:     details.Get("Stand Meter").String(),
		Period:         details.Get("Periode").String(),
	}
	if v := data.Get("total_excl_fee"); v.Exists() {
		out.BillAmount = json.RawMessage(v.Raw)
	}
	if v := data.Get("total_incl_fee"); v.Exists() {
		out.TotalPayment = json.RawMessage(v.Raw)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, providers.Protocol("encode cart: %v", err)
	}
	return providers.Payload(b), nil
}

// Package tokopedia checks bills on the Tokopedia PLN page by reading the
// rendered result text.
package tokopedia

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/pkg/browser"
	"github.com/bher20/tagihanpln/pkg/providers"
	"github.com/bher20/tagihanpln/pkg/providers/shared"
)

const DefaultPageURL = "https://www.tokopedia.com/pln/tagihan-listrik/"

var (
	inputKeywords  = []string{"pelanggan", "meter"}
	buttonKeywords = []string{"cek", "tagihan"}
)

// amount is a rupiah figure with an optional "Rp" and thousands separators.
// Bare numbers need four digits so counts like "1 Bulan" never match.
const amount = `(?:(?i:rp)\.?\s*)?(\d{1,3}(?:[.,]\d{3})+|\d{4,})`

var (
	nameRe   = regexp.MustCompile(`(?i)nama(?:\s+pelanggan)?\s*:?\s*([a-z][a-z .,'\-]*[a-z])`)
	tariffRe = regexp.MustCompile(`(?i:tarif)(?:\s*/\s*(?i:daya))?\s*:?\s*([A-Z]+\d*[A-Z]?\s*/\s*\d+\s*(?i:va))`)
	periodRe = regexp.MustCompile(`(?i:periode)\s*:?\s*([A-Za-z]{3}\s+\d{4}(?:\s*-\s*[A-Za-z]{3}\s+\d{4})?)`)
	totalRe  = regexp.MustCompile(`(?i:total\s+(?:tagihan|bayar|pembayaran))\s*:?\s*` + amount)
	billRe   = regexp.MustCompile(`(?i:tagihan)\s*:?\s*` + amount)
	adminRe  = regexp.MustCompile(`(?i:biaya\s+admin)\s*:?\s*` + amount)
)

type Config struct {
	Key     string
	Name    string
	PageURL string
	Timeout time.Duration
	// Settle is how long to let the page render after submitting.
	Settle time.Duration
}

type Client struct {
	cfg  Config
	auto browser.Automation
}

func New(cfg Config, auto browser.Automation) *Client {
	if cfg.Key == "" {
		cfg.Key = "tokopedia"
	}
	if cfg.PageURL == "" {
		cfg.PageURL = DefaultPageURL
	}
	if cfg.Settle <= 0 {
		cfg.Settle = 5 * time.Second
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

	if err := sess.Navigate(ctx, c.cfg.PageURL); err != nil {
		return nil, providers.FromContext(ctx, err)
	}
	if err := sess.FillInput(ctx, inputKeywords, customerNumber); err != nil {
		if errors.Is(err, browser.ErrNotFound) {
			return nil, providers.Protocol("customer number field not found")
		}
		return nil, providers.FromContext(ctx, err)
	}
	clicked, err := sess.ClickButton(ctx, buttonKeywords)
	if err != nil {
		return nil, providers.FromContext(ctx, err)
	}
	if !clicked {
		if err := sess.PressEnter(ctx); err != nil {
			return nil, providers.FromContext(ctx, err)
		}
	}

	settle := time.NewTimer(c.cfg.Settle)
	defer settle.Stop()
	select {
	case <-settle.C:
	case <-ctx.Done():
		return nil, providers.Timeout(ctx.Err())
	}

	page, err := sess.Content(ctx)
	if err != nil {
		return nil, providers.FromContext(ctx, err)
	}
	return ParsePage(page, customerNumber)
}

type scraped struct {
	CustomerNumber string `json:"customer_number"`
	CustomerName   string `json:"customer_name,omitempty"`
	TariffPower    string `json:"tariff_power,omitempty"`
	Period         string `json:"period,omitempty"`
	BillAmount     string `json:"bill_amount,omitempty"`
	AdminFee       string `json:"admin_fee,omitempty"`
	TotalPayment   string `json:"total_payment,omitempty"`
}

// ParsePage extracts the bill from rendered HTML into the flat bill shape.
func ParsePage(page, customerNumber string) (providers.Payload, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, providers.Protocol("parse page: %v", err)
	}
	text := VisibleText(doc)

	out := scraped{
		CustomerNumber: customerNumber,
		CustomerName:   shared.FirstMatch(nameRe, text),
		TariffPower:    shared.FirstMatch(tariffRe, text),
		Period:         strings.ToUpper(shared.FirstMatch(periodRe, text)),
		AdminFee:       shared.FirstMatch(adminRe, text),
	}
	// "Total Tagihan Rp ..." would also match the bill pattern, so the total
	// is cut out before looking for the bill.
	if m := totalRe.FindStringSubmatch(text); m != nil {
		out.TotalPayment = m[1]
		text = strings.Replace(text, m[0], "", 1)
	}
	out.BillAmount = shared.FirstMatch(billRe, text)

	if out.BillAmount == "" && out.TotalPayment == "" {
		return nil, providers.Protocol("bill details not found on page")
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, providers.Protocol("encode page: %v", err)
	}
	return providers.Payload(b), nil
}

// VisibleText returns the document's text nodes one per line, skipping
// scripts and styles.
func VisibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, template").Remove()
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte('\n')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Find("body").Nodes {
		walk(n)
	}
	return shared.CollapseSpace(sb.String())
}

// Package ppob queries a PPOB aggregator (Digiflazz style) for PLN postpaid
// bills. Requests are signed with md5(apiKey + secretKey + refId).
package ppob

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/pkg/providers"
	"github.com/bher20/tagihanpln/pkg/providers/shared"
)

const (
	DefaultProductCode = "PP_PLN"
	maxBody            = 1 << 20
)

// Mapping reads the aggregator's inquiry result.
var Mapping = bill.Mapping{
	CustomerNumber: "destinationNo",
	CustomerName:   "result.headerBill.name",
	TariffSegment:  "result.headerBill.segment",
	TariffVA:       "result.headerBill.power",
	StandMeter:     "result.headerBill.standMeter",
	Period:         "result.headerBill.period",
	PeriodCodes:    bill.Flag(true),
	BillCount:      "result.headerBill.billQty",
	BillAmount:     "result.totalBill",
	AdminFee:       "result.totalAdmin",
	DetailBills:    "result.detailBill",
	DetailPeriod:   "period",
	DetailAmount:   "amount",
	DetailPenalty:  "penalty",
}

type Config struct {
	Key         string
	Name        string
	BaseURL     string
	ProductCode string
	APIKey      string
	SecretKey   string
	Timeout     time.Duration
}

// Request is the inquiry body.
type Request struct {
	ProductCode   string `json:"productCode"`
	DestinationNo string `json:"destinationNo"`
	RefID         string `json:"refId"`
	Username      string `json:"username,omitempty"`
	Sign          string `json:"sign,omitempty"`
}

type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithClock(now func() time.Time) Option {
	return func(cl *Client) { cl.now = now }
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.Key == "" {
		cfg.Key = "ppob"
	}
	if cfg.ProductCode == "" {
		cfg.ProductCode = DefaultProductCode
	}
	c := &Client{cfg: cfg, http: shared.NewHTTPClient(false), now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Spec() providers.Spec {
	return providers.Spec{
		Key:     c.cfg.Key,
		Name:    c.cfg.Name,
		Kind:    providers.KindAPI,
		URL:     c.endpoint(),
		Timeout: c.cfg.Timeout,
	}
}

func (c *Client) Mapping() bill.Mapping { return Mapping }

func (c *Client) endpoint() string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/inquiry"
}

// NewRequest builds a signed inquiry body for customerNumber.
func (c *Client) NewRequest(customerNumber string) Request {
	r := Request{
		ProductCode:   c.cfg.ProductCode,
		DestinationNo: customerNumber,
		RefID:         NewRefID(c.now()),
	}
	if c.cfg.APIKey != "" && c.cfg.SecretKey != "" {
		r.Username = c.cfg.APIKey
		r.Sign = Sign(c.cfg.APIKey, c.cfg.SecretKey, r.RefID)
	}
	return r
}

func (c *Client) Submit(ctx context.Context, customerNumber string) (providers.Payload, error) {
	body, err := json.Marshal(c.NewRequest(customerNumber))
	if err != nil {
		return nil, providers.Transport(eris.Wrap(err, "encode inquiry"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, providers.Transport(eris.Wrap(err, "build request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, providers.FromContext(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, providers.Protocol("HTTP %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, providers.FromContext(ctx, err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, providers.Protocol("invalid JSON response")
	}
	if gjson.GetBytes(raw, "status").String() != "success" {
		if msg := gjson.GetBytes(raw, "message").String(); msg != "" {
			return nil, providers.Logic(msg)
		}
		return nil, providers.Protocol("negative status")
	}
	return providers.Payload(raw), nil
}

// Sign returns hex(md5(apiKey + secretKey + refID)).
func Sign(apiKey, secretKey, refID string) string {
	sum := md5.Sum([]byte(apiKey + secretKey + refID))
	return hex.EncodeToString(sum[:])
}

// NewRefID returns "ref_<yyyymmddhhmmss>_<8 hex chars>".
func NewRefID(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ref_" + now.Format("20060102150405") + "_" + id[:8]
}

package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"stocksense/internal/adapters/config"
)

const iexBaseURL = "https://sandbox.iexapis.com/stable"

// Quote is a condensed IEX stock quote
type Quote struct {
	Symbol        string          `json:"symbol"`
	CompanyName   string          `json:"companyName"`
	LatestPrice   decimal.Decimal `json:"latestPrice"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent float64         `json:"changePercent"`
	LatestVolume  int64           `json:"latestVolume"`
	MarketCap     int64           `json:"marketCap"`
	PERatio       float64         `json:"peRatio"`
	Week52High    float64         `json:"week52High"`
	Week52Low     float64         `json:"week52Low"`
	YTDChange     float64         `json:"ytdChange"`
}

// MoverList enumerates the IEX market mover lists
type MoverList string

const (
	MoversGainers    MoverList = "gainers"
	MoversLosers     MoverList = "losers"
	MoversMostActive MoverList = "mostactive"
)

// IEXClient fetches quotes and market movers, degrading to canned
// payloads on any failure
type IEXClient struct {
	http *httpClient
}

func NewIEXClient(cfg config.ProviderConfig) *IEXClient {
	return &IEXClient{
		http: newHTTPClient("iex", iexBaseURL, cfg.IEXAPIKey, "token", cfg.HTTPTimeout, cfg.RatePerSecond),
	}
}

// GetQuote returns the latest quote for one symbol
func (c *IEXClient) GetQuote(ctx context.Context, symbol string) Result[Quote] {
	endpoint := fmt.Sprintf("/stock/%s/quote", symbol)

	var quote Quote
	if err := c.http.getJSON(ctx, endpoint, nil, &quote); err != nil {
		return Fallback(mockQuote(symbol), c.http.fellBack(endpoint, err))
	}

	c.http.live(endpoint)
	return Live(quote)
}

// BatchQuotes returns quotes for several symbols keyed by symbol
func (c *IEXClient) BatchQuotes(ctx context.Context, symbols []string) Result[map[string]Quote] {
	const endpoint = "/stock/market/batch"

	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	params.Set("types", "quote")

	var payload map[string]struct {
		Quote Quote `json:"quote"`
	}
	if err := c.http.getJSON(ctx, endpoint, params, &payload); err != nil {
		out := make(map[string]Quote, len(symbols))
		for _, s := range symbols {
			out[s] = mockQuote(s)
		}
		return Fallback(out, c.http.fellBack(endpoint, err))
	}

	out := make(map[string]Quote, len(payload))
	for symbol, entry := range payload {
		out[symbol] = entry.Quote
	}
	c.http.live(endpoint)
	return Live(out)
}

// Movers returns one of the market mover lists
func (c *IEXClient) Movers(ctx context.Context, list MoverList) Result[[]Quote] {
	endpoint := fmt.Sprintf("/stock/market/list/%s", list)

	var payload []Quote
	if err := c.http.getJSON(ctx, endpoint, nil, &payload); err != nil {
		return Fallback(mockMovers(), c.http.fellBack(endpoint, err))
	}

	c.http.live(endpoint)
	return Live(payload)
}

var mockQuoteBase = map[string]struct {
	price     float64
	change    float64
	changePct float64
	marketCap int64
	peRatio   float64
}{
	"AAPL":  {174.50, -2.30, -0.013, 2_800_000_000_000, 29.5},
	"MSFT":  {421.30, 8.90, 0.022, 3_120_000_000_000, 32.1},
	"GOOGL": {140.85, 3.25, 0.024, 1_750_000_000_000, 25.8},
	"NVDA":  {518.73, 15.20, 0.030, 1_280_000_000_000, 65.2},
	"TSLA":  {248.50, -12.80, -0.049, 790_000_000_000, 45.7},
}

func mockQuote(symbol string) Quote {
	base, ok := mockQuoteBase[symbol]
	if !ok {
		base = mockQuoteBase["AAPL"]
	}
	return Quote{
		Symbol:        symbol,
		CompanyName:   symbol + " Inc.",
		LatestPrice:   decimal.NewFromFloat(base.price),
		Change:        decimal.NewFromFloat(base.change),
		ChangePercent: base.changePct,
		LatestVolume:  25_000_000,
		MarketCap:     base.marketCap,
		PERatio:       base.peRatio,
		Week52High:    base.price * 1.3,
		Week52Low:     base.price * 0.7,
	}
}

func mockMovers() []Quote {
	return []Quote{
		mockQuote("NVDA"),
		mockQuote("MSFT"),
		mockQuote("GOOGL"),
	}
}

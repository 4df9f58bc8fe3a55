package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"
	"fxfolio-service/internal/infrastructure/httpx"

	"github.com/shopspring/decimal"
)

const (
	chartPath  = "/v8/finance/chart/"
	priceScale = 6
)

// YahooChartProvider reads daily OHLC series and live quotes from the Yahoo
// Finance chart API. History fetches are a single HTTP attempt; the live
// quote path goes through the retrying httpx client.
type YahooChartProvider struct {
	BaseURL string
	Client  *http.Client
	Live    *httpx.Client
}

var _ application.MarketProvider = (*YahooChartProvider)(nil)

type chartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *YahooChartProvider) FetchDaily(ctx context.Context, instrument domain.Instrument, from, to time.Time) ([]domain.Bar, error) {
	u, err := p.chartURL(instrument, url.Values{
		"interval": {"1d"},
		"period1":  {strconv.FormatInt(domain.Day(from).Unix(), 10)},
		// period2 is exclusive upstream; push it one day past the window end.
		"period2": {strconv.FormatInt(domain.Day(to).AddDate(0, 0, 1).Unix(), 10)},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoochart: create request: %w", err)
	}
	req.Header.Set("User-Agent", httpx.UserAgent)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoochart: do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoochart: status %d", resp.StatusCode)
	}

	var body chartResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("yahoochart: decode response: %w", err)
	}
	return parseBars(instrument, body, domain.Day(from), domain.Day(to))
}

func (p *YahooChartProvider) Quote(ctx context.Context, instrument domain.Instrument) (domain.Rate, error) {
	u, err := p.chartURL(instrument, url.Values{"interval": {"1d"}, "range": {"1d"}})
	if err != nil {
		return domain.Rate{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Rate{}, fmt.Errorf("yahoochart: create request: %w", err)
	}

	live := p.Live
	if live == nil {
		live = &httpx.Client{HTTP: p.Client}
	}
	var body chartResp
	if err := live.DoJSON(ctx, req, &body); err != nil {
		return domain.Rate{}, fmt.Errorf("yahoochart: quote: %w", err)
	}
	if err := chartError(body); err != nil {
		return domain.Rate{}, err
	}
	if len(body.Chart.Result) == 0 {
		return domain.Rate{}, errors.New("yahoochart: empty result")
	}
	meta := body.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return domain.Rate{}, errors.New("yahoochart: missing regular market price")
	}
	asOf := time.Now().UTC()
	if meta.RegularMarketTime > 0 {
		asOf = time.Unix(meta.RegularMarketTime, 0).UTC()
	}
	return domain.Rate{
		Instrument: instrument,
		Price:      decimal.NewFromFloat(meta.RegularMarketPrice).Round(priceScale),
		AsOf:       asOf,
	}, nil
}

func (p *YahooChartProvider) chartURL(instrument domain.Instrument, q url.Values) (string, error) {
	ticker, ok := instrument.Ticker()
	if !ok {
		return "", fmt.Errorf("yahoochart: %w: %s", domain.ErrUnknownInstrument, instrument)
	}
	if p.BaseURL == "" {
		return "", errors.New("yahoochart: missing base url")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return "", fmt.Errorf("yahoochart: invalid base url: %w", err)
	}
	u.Path = chartPath + ticker
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// parseBars zips the parallel timestamp/OHLC arrays into bars, dropping
// entries with any missing field, clipping to [from, to]. A duplicate date
// (the in-progress session repeated with an intraday timestamp) keeps the
// later entry.
func parseBars(instrument domain.Instrument, body chartResp, from, to time.Time) ([]domain.Bar, error) {
	if err := chartError(body); err != nil {
		return nil, err
	}
	if len(body.Chart.Result) == 0 || len(body.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.New("yahoochart: empty result")
	}
	res := body.Chart.Result[0]
	quote := res.Indicators.Quote[0]
	n := len(res.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Close) != n {
		return nil, fmt.Errorf("yahoochart: misaligned series: %d timestamps", n)
	}

	byDate := make(map[time.Time]domain.Bar, n)
	order := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}
		d := domain.Day(time.Unix(res.Timestamp[i], 0))
		if d.Before(from) || d.After(to) {
			continue
		}
		if _, seen := byDate[d]; !seen {
			order = append(order, d)
		}
		byDate[d] = domain.Bar{
			Instrument: instrument,
			Date:       d,
			Open:       decimal.NewFromFloat(*quote.Open[i]).Round(priceScale),
			High:       decimal.NewFromFloat(*quote.High[i]).Round(priceScale),
			Low:        decimal.NewFromFloat(*quote.Low[i]).Round(priceScale),
			Close:      decimal.NewFromFloat(*quote.Close[i]).Round(priceScale),
		}
	}

	out := make([]domain.Bar, 0, len(order))
	for _, d := range order {
		out = append(out, byDate[d])
	}
	return out, nil
}

func chartError(body chartResp) error {
	if body.Chart.Error != nil {
		return fmt.Errorf("yahoochart: %s: %s", body.Chart.Error.Code, body.Chart.Error.Description)
	}
	return nil
}

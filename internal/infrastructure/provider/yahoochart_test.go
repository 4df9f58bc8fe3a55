package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"fxfolio-service/internal/domain"
	"fxfolio-service/internal/infrastructure/httpx"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string, req *http.Request) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    req,
	}
}

func chartBody(ts []int64, closes []string) string {
	var sb strings.Builder
	sb.WriteString(`{"chart":{"result":[{"meta":{"regularMarketPrice":1333.45,"regularMarketTime":1704844800},"timestamp":[`)
	for i, t := range ts {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "%d", t)
	}
	sb.WriteString(`],"indicators":{"quote":[{`)
	for _, field := range []string{"open", "high", "low", "close"} {
		fmt.Fprintf(&sb, `"%s":[`, field)
		for i, c := range closes {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(c)
		}
		sb.WriteString(`],`)
	}
	out := strings.TrimSuffix(sb.String(), ",")
	return out + `}]}}],"error":null}}`
}

func newProvider(rt roundTripFunc) *YahooChartProvider {
	client := &http.Client{Transport: rt}
	return &YahooChartProvider{
		BaseURL: "https://example.com",
		Client:  client,
		Live:    &httpx.Client{HTTP: client},
	}
}

func TestFetchDaily_ParsesWindow(t *testing.T) {
	d1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	var gotURL string
	p := newProvider(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		return jsonResponse(200, chartBody(
			[]int64{d1.Unix(), d2.Unix()},
			[]string{"1333.1234567", "1340.5"},
		), r), nil
	})

	bars, err := p.FetchDaily(context.Background(), domain.USDKRW, d1, d2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	require.Equal(t, d1, bars[0].Date)
	require.Equal(t, domain.USDKRW, bars[0].Instrument)
	// Prices round to six fractional digits.
	require.True(t, bars[0].Close.Equal(decimal.RequireFromString("1333.123457")))

	require.Contains(t, gotURL, "/v8/finance/chart/KRW=X")
	require.Contains(t, gotURL, "interval=1d")
	// period2 is exclusive upstream, so it points one day past the window.
	require.Contains(t, gotURL, fmt.Sprintf("period2=%d", d2.AddDate(0, 0, 1).Unix()))
}

func TestFetchDaily_SkipsNullEntries(t *testing.T) {
	d1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	p := newProvider(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, chartBody(
			[]int64{d1.Unix(), d2.Unix()},
			[]string{"null", "1340.5"},
		), r), nil
	})

	bars, err := p.FetchDaily(context.Background(), domain.USDKRW, d1, d2)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	require.Equal(t, d2, bars[0].Date)
}

func TestFetchDaily_ClipsOutsideWindow(t *testing.T) {
	d1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	before := d1.AddDate(0, 0, -1)

	p := newProvider(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, chartBody(
			[]int64{before.Unix(), d1.Unix()},
			[]string{"1320", "1330"},
		), r), nil
	})

	bars, err := p.FetchDaily(context.Background(), domain.USDKRW, d1, d1)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	require.Equal(t, d1, bars[0].Date)
}

func TestFetchDaily_SingleAttemptOnServerError(t *testing.T) {
	var calls int
	p := newProvider(func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(500, "oops", r), nil
	})

	d := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := p.FetchDaily(context.Background(), domain.USDKRW, d, d)
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestFetchDaily_ChartError(t *testing.T) {
	p := newProvider(func(r *http.Request) (*http.Response, error) {
		body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`
		return jsonResponse(200, body, r), nil
	})

	d := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := p.FetchDaily(context.Background(), domain.USDKRW, d, d)
	require.Error(t, err)
	require.Contains(t, err.Error(), "No data found")
}

func TestFetchDaily_DerivedInstrumentRejected(t *testing.T) {
	p := newProvider(func(r *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})

	d := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := p.FetchDaily(context.Background(), domain.JPYKRW, d, d)
	require.ErrorIs(t, err, domain.ErrUnknownInstrument)
}

func TestQuote_UsesRegularMarketPrice(t *testing.T) {
	d := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	p := newProvider(func(r *http.Request) (*http.Response, error) {
		require.Contains(t, r.URL.RawQuery, "range=1d")
		return jsonResponse(200, chartBody([]int64{d.Unix()}, []string{"1333.45"}), r), nil
	})

	rate, err := p.Quote(context.Background(), domain.USDKRW)
	require.NoError(t, err)
	require.True(t, rate.Price.Equal(decimal.RequireFromString("1333.45")))
	require.Equal(t, time.Unix(1704844800, 0).UTC(), rate.AsOf)
	require.False(t, rate.Stale)
}

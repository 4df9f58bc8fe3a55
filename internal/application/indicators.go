package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"fxfolio-service/internal/domain"
)

// ICE dollar-index constant and weights.
const dxyCoefficient = 50.14348112

var dxyWeights = map[domain.Instrument]float64{
	domain.EURUSD: -0.576,
	domain.USDJPY: 0.136,
	domain.GBPUSD: -0.119,
	domain.USDCAD: 0.091,
	domain.USDSEK: 0.042,
	domain.USDCHF: 0.036,
}

// Signals are the dashboard's O/X buy-side indicators: O means the metric
// currently reads cheap against its window midpoint.
type Signals struct {
	DXY         string `json:"dxy"`
	USDKRW      string `json:"usd_krw"`
	GapRatio    string `json:"gap_ratio"`
	FairRate    string `json:"fair_rate"`
	JXY         string `json:"jxy"`
	JPYKRW      string `json:"jpy_krw"`
	JPYGapRatio string `json:"jpy_gap_ratio"`
	JPYFairRate string `json:"jpy_fair_rate"`
}

type IndicatorReport struct {
	Months        int     `json:"months"`
	CurrentDXY    float64 `json:"current_dxy"`
	DXYMid        float64 `json:"dxy_mid"`
	CurrentUSDKRW float64 `json:"current_usd_krw"`
	USDKRWMid     float64 `json:"usd_krw_mid"`
	CurrentJXY    float64 `json:"current_jxy"`
	JXYMid        float64 `json:"jxy_mid"`
	CurrentJPYKRW float64 `json:"current_jpy_krw"`
	JPYKRWMid     float64 `json:"jpy_krw_mid"`
	FairUSDKRW    float64 `json:"fair_usd_krw"`
	FairJPYKRW100 float64 `json:"fair_jpy_krw_100"`
	Signals       Signals `json:"signals"`
}

// IndicatorsService computes window midpoints and O/X signals from the
// cached history plus live rates.
type IndicatorsService struct {
	history HistoryFetcher
	rates   *RatesService
}

func NewIndicatorsService(history HistoryFetcher, rates *RatesService) *IndicatorsService {
	return &IndicatorsService{history: history, rates: rates}
}

func (s *IndicatorsService) Compute(ctx context.Context, months int) (IndicatorReport, error) {
	if months <= 0 {
		months = 12
	}
	results, err := s.history.FetchWindow(ctx, months, domain.AllInstruments())
	if err != nil {
		return IndicatorReport{}, err
	}
	closes := map[domain.Instrument]map[time.Time]float64{}
	for _, res := range results {
		m := make(map[time.Time]float64, len(res.Bars))
		for _, b := range res.Bars {
			m[domain.Day(b.Date)] = b.Close.InexactFloat64()
		}
		closes[res.Instrument] = m
	}

	dxySeries := dollarIndexSeries(closes)
	if len(dxySeries) == 0 {
		return IndicatorReport{}, fmt.Errorf("insufficient history for dollar index")
	}
	usdKRWSeries := seriesValues(closes[domain.USDKRW])
	jxySeries := seriesValues(closes[domain.JXY])
	jpyKRWSeries := seriesValues(closes[domain.JPYKRW])
	if len(usdKRWSeries) == 0 || len(jxySeries) == 0 || len(jpyKRWSeries) == 0 {
		return IndicatorReport{}, fmt.Errorf("insufficient history for indicators")
	}

	rates, err := s.rates.CurrentRates(ctx, domain.AllInstruments())
	if err != nil {
		return IndicatorReport{}, err
	}
	live := map[domain.Instrument]float64{}
	for _, r := range rates {
		live[r.Instrument] = r.Price.InexactFloat64()
	}

	rep := IndicatorReport{
		Months:        months,
		CurrentDXY:    dollarIndexAt(live),
		DXYMid:        midpoint(dxySeries),
		CurrentUSDKRW: live[domain.USDKRW],
		USDKRWMid:     midpoint(usdKRWSeries),
		CurrentJXY:    live[domain.JXY],
		JXYMid:        midpoint(jxySeries),
		CurrentJPYKRW: live[domain.JPYKRW],
		JPYKRWMid:     midpoint(jpyKRWSeries),
	}

	// Dollar side: gap ratio compares the index against the won, fair rate
	// is the won level implied by the window-average gap.
	currentGap := rep.CurrentDXY / rep.CurrentUSDKRW * 100
	midGap := rep.DXYMid / rep.USDKRWMid * 100
	rep.FairUSDKRW = rep.CurrentDXY / midGap * 100

	// Yen side, quoted per 100 JPY.
	currentJPYGap := rep.CurrentJXY / rep.CurrentJPYKRW
	midJPYGap := rep.JXYMid / rep.JPYKRWMid
	rep.FairJPYKRW100 = rep.CurrentJXY / midJPYGap * 100

	rep.Signals = Signals{
		DXY:         mark(rep.CurrentDXY < rep.DXYMid),
		USDKRW:      mark(rep.CurrentUSDKRW < rep.USDKRWMid),
		GapRatio:    mark(currentGap > midGap),
		FairRate:    mark(rep.CurrentUSDKRW < rep.FairUSDKRW),
		JXY:         mark(rep.CurrentJXY < rep.JXYMid),
		JPYKRW:      mark(rep.CurrentJPYKRW < rep.JPYKRWMid),
		JPYGapRatio: mark(currentJPYGap > midJPYGap),
		JPYFairRate: mark(rep.CurrentJPYKRW*100 < rep.FairJPYKRW100),
	}
	return rep, nil
}

// dollarIndexSeries computes DXY per date, skipping dates where any of the
// six majors is missing a close.
func dollarIndexSeries(closes map[domain.Instrument]map[time.Time]float64) []float64 {
	var out []float64
	for date := range closes[domain.EURUSD] {
		vals := map[domain.Instrument]float64{}
		complete := true
		for inst := range dxyWeights {
			v, ok := closes[inst][date]
			if !ok || v <= 0 {
				complete = false
				break
			}
			vals[inst] = v
		}
		if complete {
			out = append(out, dollarIndexAt(vals))
		}
	}
	return out
}

func dollarIndexAt(vals map[domain.Instrument]float64) float64 {
	idx := dxyCoefficient
	for inst, w := range dxyWeights {
		v := vals[inst]
		if v <= 0 {
			return 0
		}
		idx *= math.Pow(v, w)
	}
	return idx
}

func seriesValues(m map[time.Time]float64) []float64 {
	out := make([]float64, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func midpoint(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return (lo + hi) / 2
}

func mark(buy bool) string {
	if buy {
		return "O"
	}
	return "X"
}

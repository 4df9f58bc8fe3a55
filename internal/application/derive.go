package application

import (
	"time"

	"fxfolio-service/internal/domain"

	"github.com/shopspring/decimal"
)

// derivedScale matches the six-fractional-digit precision of stored bars.
const derivedScale = 6

var hundred = decimal.NewFromInt(100)

// DeriveBars computes a derived instrument's daily bars from the USD_JPY and
// USD_KRW windows, joining on date:
//
//	JPY_KRW = USD_KRW / USD_JPY
//	JXY     = 100 / USD_JPY
//
// Dates missing from a required base series are skipped.
func DeriveBars(inst domain.Instrument, usdJPY, usdKRW []domain.Bar) []domain.Bar {
	jpyByDate := barIndex(usdJPY)

	switch inst {
	case domain.JXY:
		out := make([]domain.Bar, 0, len(usdJPY))
		for _, jpy := range usdJPY {
			out = append(out, domain.Bar{
				Instrument: inst,
				Date:       domain.Day(jpy.Date),
				Open:       hundred.DivRound(jpy.Open, derivedScale),
				// Inverting swaps the extremes: the day's high in JXY comes
				// from the day's low in USD_JPY.
				High:  hundred.DivRound(jpy.Low, derivedScale),
				Low:   hundred.DivRound(jpy.High, derivedScale),
				Close: hundred.DivRound(jpy.Close, derivedScale),
			})
		}
		return out
	case domain.JPYKRW:
		out := make([]domain.Bar, 0, len(usdKRW))
		for _, krw := range usdKRW {
			jpy, ok := jpyByDate[domain.Day(krw.Date)]
			if !ok {
				continue
			}
			out = append(out, domain.Bar{
				Instrument: inst,
				Date:       domain.Day(krw.Date),
				Open:       krw.Open.DivRound(jpy.Open, derivedScale),
				High:       krw.High.DivRound(jpy.Low, derivedScale),
				Low:        krw.Low.DivRound(jpy.High, derivedScale),
				Close:      krw.Close.DivRound(jpy.Close, derivedScale),
			})
		}
		return out
	default:
		return nil
	}
}

func barIndex(bars []domain.Bar) map[time.Time]domain.Bar {
	idx := make(map[time.Time]domain.Bar, len(bars))
	for _, b := range bars {
		idx[domain.Day(b.Date)] = b
	}
	return idx
}

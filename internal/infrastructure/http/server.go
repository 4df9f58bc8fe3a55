package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Server struct {
	history    application.HistoryFetcher
	rates      *application.RatesService
	indicators *application.IndicatorsService
	portfolio  *application.PortfolioService
	ping       func(context.Context) error
}

type ServerOption func(*Server)

// WithPing wires the readiness probe to a storage health check.
func WithPing(ping func(context.Context) error) ServerOption {
	return func(s *Server) { s.ping = ping }
}

func NewServer(
	history application.HistoryFetcher,
	rates *application.RatesService,
	indicators *application.IndicatorsService,
	portfolio *application.PortfolioService,
	opts ...ServerOption,
) *Server {
	s := &Server{history: history, rates: rates, indicators: indicators, portfolio: portfolio}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const dateLayout = "2006-01-02"

type barDTO struct {
	Date  string `json:"date"`
	Open  string `json:"open"`
	High  string `json:"high"`
	Low   string `json:"low"`
	Close string `json:"close"`
}

type historyResultDTO struct {
	Instrument string   `json:"instrument"`
	Status     string   `json:"status"`
	Bars       []barDTO `json:"bars"`
	Error      string   `json:"error,omitempty"`
}

type rateDTO struct {
	Instrument string    `json:"instrument"`
	Price      string    `json:"price"`
	AsOf       time.Time `json:"as_of"`
	Stale      bool      `json:"stale"`
}

type investmentDTO struct {
	ID           string `json:"id"`
	Currency     string `json:"currency"`
	Number       int    `json:"number"`
	PurchaseDate string `json:"purchase_date"`
	Amount       string `json:"amount"`
	Rate         string `json:"rate"`
	PurchaseKRW  string `json:"purchase_krw"`
	ExchangeName string `json:"exchange_name,omitempty"`
}

type sellRecordDTO struct {
	ID               string `json:"id"`
	InvestmentID     string `json:"investment_id"`
	InvestmentNumber int    `json:"investment_number"`
	Currency         string `json:"currency"`
	SellDate         string `json:"sell_date"`
	PurchaseRate     string `json:"purchase_rate"`
	SellRate         string `json:"sell_rate"`
	Amount           string `json:"amount"`
	SellKRW          string `json:"sell_krw"`
	ProfitKRW        string `json:"profit_krw"`
	ExchangeName     string `json:"exchange_name,omitempty"`
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	months := intQuery(r, "months", 0)
	instruments, err := instrumentsQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results, err := s.history.FetchWindow(r.Context(), months, instruments)
	if err != nil {
		writeAppError(w, err)
		return
	}
	out := make([]historyResultDTO, 0, len(results))
	for _, res := range results {
		bars := make([]barDTO, 0, len(res.Bars))
		for _, b := range res.Bars {
			bars = append(bars, barDTO{
				Date:  b.Date.Format(dateLayout),
				Open:  b.Open.String(),
				High:  b.High.String(),
				Low:   b.Low.String(),
				Close: b.Close.String(),
			})
		}
		out = append(out, historyResultDTO{
			Instrument: string(res.Instrument),
			Status:     string(res.Status),
			Bars:       bars,
			Error:      res.Error,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) getCurrentRates(w http.ResponseWriter, r *http.Request) {
	instruments, err := instrumentsQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rates, err := s.rates.CurrentRates(r.Context(), instruments)
	if err != nil {
		writeAppError(w, err)
		return
	}
	out := make([]rateDTO, 0, len(rates))
	for _, rt := range rates {
		out = append(out, rateDTO{
			Instrument: string(rt.Instrument),
			Price:      rt.Price.String(),
			AsOf:       rt.AsOf,
			Stale:      rt.Stale,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rates": out})
}

func (s *Server) getIndicators(w http.ResponseWriter, r *http.Request) {
	months := intQuery(r, "months", 0)
	rep, err := s.indicators.Compute(r.Context(), months)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type createInvestmentRequest struct {
	Currency     string `json:"currency"`
	PurchaseDate string `json:"purchase_date,omitempty"`
	Amount       string `json:"amount"`
	Rate         string `json:"rate"`
	PurchaseKRW  string `json:"purchase_krw,omitempty"`
	ExchangeName string `json:"exchange_name,omitempty"`
}

func (s *Server) createInvestment(w http.ResponseWriter, r *http.Request) {
	var body createInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	rate, err := decimal.NewFromString(body.Rate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rate")
		return
	}
	inv := domain.Investment{
		Currency:     domain.LotCurrency(body.Currency),
		Amount:       amount,
		Rate:         rate,
		ExchangeName: body.ExchangeName,
	}
	if body.PurchaseKRW != "" {
		krw, err := decimal.NewFromString(body.PurchaseKRW)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid purchase_krw")
			return
		}
		inv.PurchaseKRW = krw
	}
	if body.PurchaseDate != "" {
		d, err := time.Parse(dateLayout, body.PurchaseDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid purchase_date")
			return
		}
		inv.PurchaseDate = d
	}
	if err := s.portfolio.CreateInvestment(r.Context(), &inv); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvestmentDTO(inv))
}

func (s *Server) listInvestments(w http.ResponseWriter, r *http.Request) {
	currency, err := currencyQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lots, err := s.portfolio.ListInvestments(r.Context(), currency)
	if err != nil {
		writeAppError(w, err)
		return
	}
	out := make([]investmentDTO, 0, len(lots))
	for _, inv := range lots {
		out = append(out, toInvestmentDTO(inv))
	}
	writeJSON(w, http.StatusOK, map[string]any{"investments": out})
}

type valuationDTO struct {
	Investment    investmentDTO `json:"investment"`
	CurrentRate   string        `json:"current_rate"`
	ValueKRW      string        `json:"value_krw"`
	UnrealizedKRW string        `json:"unrealized_krw"`
}

func (s *Server) valuateInvestments(w http.ResponseWriter, r *http.Request) {
	currency, err := currencyQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if currency == "" {
		currency = domain.LotUSD
	}
	rates, err := s.rates.CurrentRates(r.Context(), []domain.Instrument{currency.Instrument()})
	if err != nil {
		writeAppError(w, err)
		return
	}
	vals, err := s.portfolio.ValueLots(r.Context(), currency, rates[0].Price)
	if err != nil {
		writeAppError(w, err)
		return
	}
	out := make([]valuationDTO, 0, len(vals))
	for _, v := range vals {
		out = append(out, valuationDTO{
			Investment:    toInvestmentDTO(v.Investment),
			CurrentRate:   v.CurrentRate.String(),
			ValueKRW:      v.ValueKRW.String(),
			UnrealizedKRW: v.UnrealizedKRW.String(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currency":   string(currency),
		"rate_stale": rates[0].Stale,
		"valuations": out,
	})
}

func (s *Server) deleteInvestment(w http.ResponseWriter, r *http.Request) {
	if err := s.portfolio.DeleteInvestment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sellRequest struct {
	SellRate string `json:"sell_rate"`
	Amount   string `json:"amount"`
}

func (s *Server) sellInvestment(w http.ResponseWriter, r *http.Request) {
	var body sellRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sellRate, err := decimal.NewFromString(body.SellRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sell_rate")
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	outcome, err := s.portfolio.Sell(r.Context(), chi.URLParam(r, "id"), sellRate, amount)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"record":    toSellRecordDTO(outcome.Record),
		"remaining": outcome.Remaining.String(),
		"closed":    outcome.Closed,
	})
}

func (s *Server) listSellRecords(w http.ResponseWriter, r *http.Request) {
	currency, err := currencyQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := s.portfolio.ListSellRecords(r.Context(), currency)
	if err != nil {
		writeAppError(w, err)
		return
	}
	out := make([]sellRecordDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toSellRecordDTO(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sell_records": out})
}

func (s *Server) deleteSellRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.portfolio.DeleteSellRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toInvestmentDTO(inv domain.Investment) investmentDTO {
	return investmentDTO{
		ID:           inv.ID,
		Currency:     string(inv.Currency),
		Number:       inv.Number,
		PurchaseDate: inv.PurchaseDate.Format(dateLayout),
		Amount:       inv.Amount.String(),
		Rate:         inv.Rate.String(),
		PurchaseKRW:  inv.PurchaseKRW.String(),
		ExchangeName: inv.ExchangeName,
	}
}

func toSellRecordDTO(rec domain.SellRecord) sellRecordDTO {
	return sellRecordDTO{
		ID:               rec.ID,
		InvestmentID:     rec.InvestmentID,
		InvestmentNumber: rec.InvestmentNumber,
		Currency:         string(rec.Currency),
		SellDate:         rec.SellDate.Format(dateLayout),
		PurchaseRate:     rec.PurchaseRate.String(),
		SellRate:         rec.SellRate.String(),
		Amount:           rec.Amount.String(),
		SellKRW:          rec.SellKRW.String(),
		ProfitKRW:        rec.ProfitKRW.String(),
		ExchangeName:     rec.ExchangeName,
	}
}

func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func instrumentsQuery(r *http.Request) ([]domain.Instrument, error) {
	raw := r.URL.Query().Get("instruments")
	if raw == "" {
		return nil, nil
	}
	var out []domain.Instrument
	for _, name := range strings.Split(raw, ",") {
		inst := domain.Instrument(strings.TrimSpace(name))
		if !inst.Valid() {
			return nil, errors.New("unknown instrument: " + string(inst))
		}
		out = append(out, inst)
	}
	return out, nil
}

func currencyQuery(r *http.Request) (domain.LotCurrency, error) {
	raw := r.URL.Query().Get("currency")
	if raw == "" {
		return "", nil
	}
	c := domain.LotCurrency(strings.ToUpper(raw))
	if !c.Valid() {
		return "", errors.New("unknown currency: " + raw)
	}
	return c, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, application.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

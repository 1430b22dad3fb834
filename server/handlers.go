package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/bitfsorg/estateshare-go/market"
	"github.com/bitfsorg/estateshare-go/rental"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 16

// RentBody is the body of POST /api/rentals. Exactly one of TotalPayment
// (base units) and Amount (decimal display units) must be set.
type RentBody struct {
	Account       string `json:"account"`
	PropertyID    uint64 `json:"propertyId"`
	DurationYears int    `json:"durationYears"`
	TotalPayment  string `json:"totalPayment,omitempty"`
	Amount        string `json:"amount,omitempty"`
}

func (b RentBody) payment(decimals int32) (*big.Int, error) {
	switch {
	case b.TotalPayment != "" && b.Amount != "":
		return nil, fmt.Errorf("%w: set totalPayment or amount, not both", market.ErrInvalidPayment)
	case b.Amount != "":
		return market.ParseAmount(b.Amount, decimals)
	case b.TotalPayment != "":
		v, ok := new(big.Int).SetString(b.TotalPayment, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q", market.ErrInvalidPayment, b.TotalPayment)
		}
		return v, nil
	}
	return nil, market.ErrInvalidPayment
}

// RentalView is a rental together with its current status.
type RentalView struct {
	Rental rental.Record `json:"rental"`
	Status rental.Status `json:"status"`
}

// QuoteView is a quote with display amounts.
type QuoteView struct {
	market.Quote
	YearlyRentDisplay string `json:"yearlyRentDisplay"`
	TotalDisplay      string `json:"totalDisplay"`
}

func (s *Server) session(account string) market.Session {
	return market.Session{Account: account, Contract: s.contract}
}

func propertyID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   string(s.rentals.Mode()),
	})
}

// rentProperty handles POST /api/rentals.
func (s *Server) rentProperty(w http.ResponseWriter, r *http.Request) {
	var body RentBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrorCodeInvalidRequest, "malformed body: "+err.Error())
		return
	}
	total, err := body.payment(s.cfg.Decimals)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	// Once transfers start they run to the end even if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	conf, err := s.rentals.Rent(ctx, s.session(body.Account), market.RentRequest{
		PropertyID:    body.PropertyID,
		DurationYears: body.DurationYears,
		TotalPayment:  total,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.logger.Info("rental confirmed",
		zap.String("request_id", requestID(r)),
		zap.String("rental_request_id", conf.RequestID),
		zap.Uint64("property_id", conf.Record.PropertyID),
		zap.String("tenant", conf.Record.Tenant))
	writeJSON(w, http.StatusCreated, conf)
}

// rentalDetails handles GET /api/rentals/{id}.
func (s *Server) rentalDetails(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid property id")
		return
	}
	rec, err := s.rentals.Details(r.Context(), s.session(""), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RentalView{Rental: rec, Status: rec.Status(s.now().Unix())})
}

// quote handles GET /api/properties/{id}/quote?years=N.
func (s *Server) quote(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid property id")
		return
	}
	years := market.MinDurationYears
	if v := r.URL.Query().Get("years"); v != "" {
		if years, err = strconv.Atoi(v); err != nil {
			s.writeError(w, r, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid years")
			return
		}
	}

	q, err := market.GetQuote(r.Context(), s.session(""), id, years)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QuoteView{
		Quote:             *q,
		YearlyRentDisplay: market.FormatAmount(q.YearlyRent, s.cfg.Decimals),
		TotalDisplay:      market.FormatAmount(q.Total, s.cfg.Decimals),
	})
}

// tenantRentals handles GET /api/tenants/{address}/rentals.
func (s *Server) tenantRentals(w http.ResponseWriter, r *http.Request) {
	list, err := market.MyRentals(r.Context(), s.store, mux.Vars(r)["address"], s.now())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

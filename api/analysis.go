package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/duplicates"
	"github.com/aqlanhadi/sbtax/ledger"
	"github.com/aqlanhadi/sbtax/tax"
	"github.com/shopspring/decimal"
)

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

type categorizeRequest struct {
	Descriptions []string `json:"descriptions"`
}

type categorized struct {
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	CategoryType categorizer.Type `json:"category_type,omitempty"`
	Confidence   float64          `json:"confidence"`
	InterAccount bool             `json:"inter_account"`
	NeedsSplit   bool             `json:"needs_split"`
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if !s.decode(w, r, &req) {
		return
	}

	rules, err := s.rules.ActiveRules(r.Context())
	if err != nil {
		s.log.WithError(err).Error("could not load rules")
		s.writeError(w, http.StatusInternalServerError, "could not load rules")
		return
	}

	out := make([]categorized, 0, len(req.Descriptions))
	for _, d := range req.Descriptions {
		res := categorizer.Categorize(d, rules)
		out = append(out, categorized{
			Description:  d,
			Category:     res.Category,
			CategoryType: res.Type,
			Confidence:   res.Confidence,
			InterAccount: categorizer.IsInterAccountTransfer(d),
			NeedsSplit:   categorizer.IsMixedPersonalBusiness(d),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

type duplicatesRequest struct {
	Transactions []duplicates.Transaction `json:"transactions"`
	Dismissed    []duplicates.Pair        `json:"dismissed"`
}

type duplicatesResponse struct {
	Candidates []duplicates.Candidate `json:"candidates"`
	Accepted   []duplicates.Match     `json:"accepted"`
	Review     []duplicates.Match     `json:"review"`
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	var req duplicatesRequest
	if !s.decode(w, r, &req) {
		return
	}

	dismissed := make(map[duplicates.Pair]bool, len(req.Dismissed))
	for _, p := range req.Dismissed {
		dismissed[duplicates.NewPair(p.A, p.B)] = true
	}

	candidates := duplicates.WithoutDismissed(req.Transactions, duplicates.Detect(req.Transactions), dismissed)
	accepted, review := duplicates.AutoAccept(req.Transactions, candidates, dismissed)

	resp := duplicatesResponse{
		Candidates: candidates,
		Accepted:   accepted,
		Review:     review,
	}
	if resp.Candidates == nil {
		resp.Candidates = []duplicates.Candidate{}
	}
	if resp.Accepted == nil {
		resp.Accepted = []duplicates.Match{}
	}
	if resp.Review == nil {
		resp.Review = []duplicates.Match{}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type taxRequest struct {
	PeriodStart          string          `json:"period_start"`
	PeriodEnd            string          `json:"period_end"`
	TaxYear              int             `json:"tax_year"`
	Age                  int             `json:"age"`
	MedicalAidMembers    int             `json:"medical_aid_members"`
	PreviousPayments     decimal.Decimal `json:"previous_payments"`
	OfficeSqm            decimal.Decimal `json:"office_sqm"`
	HouseSqm             decimal.Decimal `json:"house_sqm"`
	HomeOfficeCategories []string        `json:"home_office_categories"`
	Entries              []ledger.Entry  `json:"entries"`
}

func (s *Server) taxParams(req taxRequest) (tax.Params, error) {
	start, err := time.Parse(time.DateOnly, req.PeriodStart)
	if err != nil {
		return tax.Params{}, fmt.Errorf("period_start: %w", err)
	}
	end, err := time.Parse(time.DateOnly, req.PeriodEnd)
	if err != nil {
		return tax.Params{}, fmt.Errorf("period_end: %w", err)
	}
	if end.Before(start) {
		return tax.Params{}, fmt.Errorf("period_end %s is before period_start %s", req.PeriodEnd, req.PeriodStart)
	}

	p := tax.Params{
		PeriodStart:          start,
		PeriodEnd:            end,
		TaxYear:              req.TaxYear,
		Age:                  req.Age,
		MedicalAidMembers:    req.MedicalAidMembers,
		PreviousPayments:     req.PreviousPayments,
		OfficeSqm:            req.OfficeSqm,
		HouseSqm:             req.HouseSqm,
		HomeOfficeCategories: req.HomeOfficeCategories,
	}
	if !p.HouseSqm.IsPositive() {
		p.OfficeSqm = decimal.NewFromFloat(s.config.OfficeSqm)
		p.HouseSqm = decimal.NewFromFloat(s.config.HouseSqm)
	}
	if p.HomeOfficeCategories == nil {
		p.HomeOfficeCategories = s.config.HomeOfficeCategories
	}
	return p, nil
}

func (s *Server) handleTax(w http.ResponseWriter, r *http.Request) {
	var req taxRequest
	if !s.decode(w, r, &req) {
		return
	}

	params, err := s.taxParams(req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := ledger.Between(req.Entries, params.PeriodStart, params.PeriodEnd)
	for i := range entries {
		if categorizer.IsInterAccountTransfer(entries[i].Description) {
			entries[i].InterAccount = true
		}
	}
	res, err := tax.Calculate(entries, params)
	if err != nil {
		s.log.WithError(err).Error("tax calculation failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

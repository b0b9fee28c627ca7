package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/xelth-com/xrfdesk/internal/services/assay"
)

// searchHistory lists committed reports matching ?q=, newest first
func (r *Router) searchHistory(w http.ResponseWriter, req *http.Request) {
	recs, err := r.svc.SearchHistory(req.Context(), req.URL.Query().Get("q"))
	if err != nil {
		r.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stripImages(recs))
}

func (r *Router) getReport(w http.ResponseWriter, req *http.Request) {
	rec, err := r.svc.GetReport(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

type reportRequest struct {
	CustomerName    string `json:"customerName"`
	ItemDescription string `json:"itemDescription"`
	ItemWeight      string `json:"itemWeight"`
	PhoneNumber     string `json:"phoneNumber"`
	Percentage      string `json:"percentage"`
	Element         string `json:"element"`
	Remarks         string `json:"remarks"`
}

func (r *Router) updateReport(w http.ResponseWriter, req *http.Request) {
	var body reportRequest
	if _, err := decode(req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	in := assay.ReportInput{
		TokenInput: assay.TokenInput{
			CustomerName:    body.CustomerName,
			ItemDescription: body.ItemDescription,
			ItemWeight:      body.ItemWeight,
			PhoneNumber:     body.PhoneNumber,
		},
		AnalysisInput: assay.AnalysisInput{
			Percentage: body.Percentage,
			Element:    body.Element,
			Remarks:    body.Remarks,
		},
	}
	rec, err := r.svc.UpdateReport(req.Context(), mux.Vars(req)["id"], in)
	if err != nil {
		r.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec.WithoutImage())
}

func (r *Router) deleteReport(w http.ResponseWriter, req *http.Request) {
	if err := r.svc.DeleteReport(req.Context(), mux.Vars(req)["id"]); err != nil {
		r.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// downloadExport streams the history CSV
func (r *Router) downloadExport(w http.ResponseWriter, req *http.Request) {
	art, err := r.svc.ExportHistory(req.Context())
	if err != nil {
		r.fail(w, err)
		return
	}
	writeArtifact(w, art, true)
}

// deliverExport saves or, with ?share=true, shares the history CSV
func (r *Router) deliverExport(w http.ResponseWriter, req *http.Request) {
	art, err := r.svc.ExportHistory(req.Context())
	if err != nil {
		r.fail(w, err)
		return
	}
	r.deliver(w, req, art)
}

func queryBool(req *http.Request, key string) bool {
	v, err := strconv.ParseBool(req.URL.Query().Get(key))
	return err == nil && v
}

package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/xelth-com/xrfdesk/internal/models"
	"github.com/xelth-com/xrfdesk/internal/services/assay"
)

// tokenRequest is the intake form. Image is a data URL or bare base64.
type tokenRequest struct {
	CustomerName    string `json:"customerName"`
	ItemDescription string `json:"itemDescription"`
	ItemWeight      string `json:"itemWeight"`
	PhoneNumber     string `json:"phoneNumber"`
	Image           string `json:"image"`
}

func (t tokenRequest) input() (assay.TokenInput, error) {
	img, err := decodeImage(t.Image)
	if err != nil {
		return assay.TokenInput{}, err
	}
	return assay.TokenInput{
		CustomerName:    t.CustomerName,
		ItemDescription: t.ItemDescription,
		ItemWeight:      t.ItemWeight,
		PhoneNumber:     t.PhoneNumber,
		Image:           img,
	}, nil
}

var errBadImage = errors.New("image must be base64 or a base64 data URL")

func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		_, payload, ok := strings.Cut(s, ";base64,")
		if !ok {
			return nil, errBadImage
		}
		s = payload
	}
	img, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errBadImage
	}
	return img, nil
}

// decode reads a JSON body into v. An empty body leaves v untouched and
// reports false.
func decode(req *http.Request, v any) (bool, error) {
	err := json.NewDecoder(req.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	return err == nil, err
}

func stripImages(recs []models.Record) []models.Record {
	out := make([]models.Record, len(recs))
	for i, r := range recs {
		out[i] = r.WithoutImage()
	}
	return out
}

// createToken issues a numbered intake token
func (r *Router) createToken(w http.ResponseWriter, req *http.Request) {
	var body tokenRequest
	if _, err := decode(req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	in, err := body.input()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := r.svc.CreateToken(req.Context(), in)
	if err != nil {
		r.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec.WithoutImage())
}

// listTokens returns today's pending tokens, or all with ?scope=all
func (r *Router) listTokens(w http.ResponseWriter, req *http.Request) {
	var (
		recs []models.Record
		err  error
	)
	switch scope := req.URL.Query().Get("scope"); scope {
	case "", "today":
		recs, err = r.svc.ListTodayTokens(req.Context())
	case "all":
		recs, err = r.svc.ListTokens(req.Context())
	default:
		respondError(w, http.StatusBadRequest, "scope must be today or all")
		return
	}
	if err != nil {
		r.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stripImages(recs))
}

func (r *Router) getToken(w http.ResponseWriter, req *http.Request) {
	rec, err := r.svc.GetToken(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (r *Router) deleteToken(w http.ResponseWriter, req *http.Request) {
	if err := r.svc.DeleteToken(req.Context(), mux.Vars(req)["id"]); err != nil {
		r.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// attachAnalysis stores the XRF result on a pending token and returns the report
func (r *Router) attachAnalysis(w http.ResponseWriter, req *http.Request) {
	var in assay.AnalysisInput
	if _, err := decode(req, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	rec, err := r.svc.AttachAnalysis(req.Context(), mux.Vars(req)["id"], in)
	if err != nil {
		r.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec.WithoutImage())
}

// commitReport moves a token into history. The body may carry the analysis.
func (r *Router) commitReport(w http.ResponseWriter, req *http.Request) {
	var in assay.AnalysisInput
	present, err := decode(req, &in)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	var inline *assay.AnalysisInput
	if present {
		inline = &in
	}
	rec, err := r.svc.Commit(req.Context(), mux.Vars(req)["id"], inline)
	if err != nil {
		r.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec.WithoutImage())
}

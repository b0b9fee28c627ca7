package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/xelth-com/xrfdesk/internal/services/assay"
	"github.com/xelth-com/xrfdesk/internal/services/share"
)

// writeArtifact sends a rendered document. attach selects a download over
// inline display.
func writeArtifact(w http.ResponseWriter, art share.Artifact, attach bool) {
	disposition := "inline"
	if attach {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, art.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Write(art.Data)
}

// tokenPDF renders the intake slip; ?masked=true prints onto letterhead stock
func (r *Router) tokenPDF(w http.ResponseWriter, req *http.Request) {
	art, err := r.svc.TokenDocument(req.Context(), mux.Vars(req)["id"], queryBool(req, "masked"))
	if err != nil {
		r.fail(w, err)
		return
	}
	writeArtifact(w, art, queryBool(req, "download"))
}

// previewReport renders the certificate a token would become, storing nothing
func (r *Router) previewReport(w http.ResponseWriter, req *http.Request) {
	var in assay.AnalysisInput
	if _, err := decode(req, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	art, err := r.svc.Preview(req.Context(), mux.Vars(req)["id"], in, queryBool(req, "masked"))
	if err != nil {
		r.fail(w, err)
		return
	}
	writeArtifact(w, art, false)
}

// reportPDF renders a committed certificate
func (r *Router) reportPDF(w http.ResponseWriter, req *http.Request) {
	art, err := r.svc.ReportDocument(req.Context(), mux.Vars(req)["id"], queryBool(req, "masked"))
	if err != nil {
		r.fail(w, err)
		return
	}
	writeArtifact(w, art, queryBool(req, "download"))
}

// deliverReport saves or shares a committed certificate through the host sink
func (r *Router) deliverReport(w http.ResponseWriter, req *http.Request) {
	art, err := r.svc.ReportDocument(req.Context(), mux.Vars(req)["id"], queryBool(req, "masked"))
	if err != nil {
		r.fail(w, err)
		return
	}
	r.deliver(w, req, art)
}

// tokenTags prints bag tags for today's pending tokens
func (r *Router) tokenTags(w http.ResponseWriter, req *http.Request) {
	art, err := r.svc.TagSheet(req.Context())
	if err != nil {
		r.fail(w, err)
		return
	}
	writeArtifact(w, art, true)
}

func (r *Router) deliver(w http.ResponseWriter, req *http.Request, art share.Artifact) {
	wantShare := queryBool(req, "share")
	where, err := r.svc.Deliver(req.Context(), art, wantShare)
	if err != nil {
		r.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"name":     art.Name,
		"location": where,
		"shared":   wantShare,
	})
}

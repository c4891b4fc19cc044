package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

type saveAssessmentRequest struct {
	Status          domain.AssessmentStatus `json:"status"`
	MappedFieldName string                  `json:"mapped_field_name"`
	Notes           string                  `json:"notes"`
	Priority        domain.Priority         `json:"priority"`
	AssignedTo      string                  `json:"assigned_to"`
	Author          string                  `json:"author"`
}

func (rt *Router) listAssessments(w http.ResponseWriter, r *http.Request) {
	list, err := rt.assessments.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": list, "count": len(list)})
}

// saveAssessment answers 200 even when the store rejected the write; the outcome's
// persistence field tells the caller whether the change is only local.
func (rt *Router) saveAssessment(w http.ResponseWriter, r *http.Request) {
	var req saveAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	outcome, err := rt.assessments.Save(r.Context(), domain.SaveAssessmentInput{
		FieldName:       r.PathValue("name"),
		Status:          req.Status,
		MappedFieldName: req.MappedFieldName,
		Notes:           req.Notes,
		Priority:        req.Priority,
		AssignedTo:      req.AssignedTo,
		Author:          req.Author,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordAssessmentSave(serviceName, string(outcome.Persistence))
	if !outcome.Persisted() {
		rt.logger.Warn("assessment_saved_locally",
			"request_id", requestIDFromContext(r.Context()),
			"field_name", outcome.Assessment.FieldName,
			"error", outcome.Error,
		)
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (rt *Router) deleteAssessment(w http.ResponseWriter, r *http.Request) {
	if err := rt.assessments.Delete(r.Context(), r.PathValue("name")); err != nil {
		rt.metrics.RecordAssessmentDelete(serviceName, "error")
		writeError(w, err)
		return
	}
	rt.metrics.RecordAssessmentDelete(serviceName, "success")
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) assessmentHistory(w http.ResponseWriter, r *http.Request) {
	history, err := rt.assessments.History(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history, "count": len(history)})
}

func (rt *Router) addField(w http.ResponseWriter, r *http.Request) {
	var input domain.NewFieldInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	outcome, err := rt.fields.AddField(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordFieldAdded(serviceName, string(outcome.Persistence))
	writeJSON(w, http.StatusCreated, outcome)
}

func (rt *Router) exportAssessments(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	format, ok := strings.CutPrefix(file, "assessments.")
	if !ok || format == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown export %q", file)})
		return
	}

	doc, err := rt.exports.Export(r.Context(), format)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordExport(serviceName, format)

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

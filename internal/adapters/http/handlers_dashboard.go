package httpadapter

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

func (rt *Router) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.loader.Status())
}

// reload is the manual retry after a failed load. A failed reload answers 503 with the
// resulting status so callers can show the error.
func (rt *Router) reload(w http.ResponseWriter, r *http.Request) {
	err := rt.loader.Reload(r.Context())
	status := rt.loader.Status()
	rt.metrics.RecordReload(serviceName, err)
	rt.metrics.SetWorkspaceSize(serviceName, status.Records, status.Assessments)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":  err.Error(),
			"status": status,
		})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (rt *Router) filters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.dashboard.Catalog())
}

func (rt *Router) dashboardView(w http.ResponseWriter, r *http.Request) {
	view, err := rt.dashboard.View(parseSelection(r.URL.Query(), rt.dashboard.Catalog()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) stats(w http.ResponseWriter, _ *http.Request) {
	stats, err := rt.dashboard.Stats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) listFields(w http.ResponseWriter, r *http.Request) {
	cards, err := rt.dashboard.ListFields(parseSelection(r.URL.Query(), rt.dashboard.Catalog()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": cards, "count": len(cards)})
}

func (rt *Router) fieldDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := rt.dashboard.FieldDetail(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// parseSelection reads one comma-separated toggle list per category key, e.g.
// ?primary_need=billing,service_delivery. Repeated parameters accumulate. Query keys that
// name no category are ignored; unknown toggles are left for validation.
func parseSelection(query url.Values, catalog domain.FilterCatalog) domain.FilterSelection {
	selection := domain.FilterSelection{}
	for _, category := range catalog.Categories {
		for _, raw := range query[string(category.Key)] {
			for _, toggle := range strings.Split(raw, ",") {
				toggle = strings.ToLower(strings.TrimSpace(toggle))
				if toggle == "" {
					continue
				}
				selection = selection.Enable(category.Key, toggle)
			}
		}
	}
	return selection
}

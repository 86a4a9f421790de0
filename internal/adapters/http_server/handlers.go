package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"realty_catalog/internal/adapters/observability"
	"realty_catalog/internal/app"
	"realty_catalog/internal/domain"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Q       *app.QueryService
	C       *app.CommandService
	L       *app.LeadService
	Tenants TenantResolver

	LeadRatePerMinute int
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(Tenant(h.Tenants))

		r.Get("/tenant", h.getTenant)
		r.Get("/stats", h.stats)
		r.Get("/sitemap", h.sitemap)

		r.Get("/properties", h.searchProperties)
		r.Post("/properties", h.createProperty)
		r.Get("/properties/slug/{slug}", h.getPropertyBySlug)
		r.Get("/properties/{id}", h.getProperty)
		r.Patch("/properties/{id}", h.updateProperty)
		r.Delete("/properties/{id}", h.deleteProperty)

		r.With(LeadRateLimit(h.LeadRatePerMinute)).Post("/leads", h.createLead)
		r.Get("/leads", h.listLeads)
		r.Get("/leads/{id}", h.getLead)
		r.Patch("/leads/{id}", h.updateLead)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err != nil {
		msg := "malformed JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		writeFailure(w, http.StatusBadRequest, apiError{Code: "BAD_REQUEST", Message: msg})
		return false
	}
	return true
}

// ---- tenant ----

type tenantView struct {
	Slug                 string                `json:"slug"`
	Name                 string                `json:"name,omitempty"`
	Domain               string                `json:"domain"`
	Status               domain.TenantStatus   `json:"status"`
	DefaultCurrency      string                `json:"defaultCurrency"`
	EnabledPropertyTypes []domain.PropertyType `json:"enabledPropertyTypes"`
	Branding             domain.Branding       `json:"branding"`
	Contact              domain.Contact        `json:"contact"`
}

func (h *Handlers) getTenant(w http.ResponseWriter, r *http.Request) {
	t := mustTenant(r)
	types := t.EnabledPropertyTypes
	if types == nil {
		types = []domain.PropertyType{}
	}
	writeETagged(w, r, tenantView{
		Slug:                 t.Slug,
		Name:                 t.Name,
		Domain:               t.Domain,
		Status:               t.Status,
		DefaultCurrency:      t.DefaultCurrency,
		EnabledPropertyTypes: types,
		Branding:             t.Branding,
		Contact:              t.Contact,
	})
}

// ---- properties ----

func (h *Handlers) searchProperties(w http.ResponseWriter, r *http.Request) {
	q, err := domain.ParseSearchQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Q.Search(r.Context(), mustTenant(r).ID, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.Q.GetProperty(r.Context(), mustTenant(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeETagged(w, r, p)
}

func (h *Handlers) getPropertyBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.Q.GetPropertyBySlug(r.Context(), mustTenant(r).ID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeETagged(w, r, p)
}

func (h *Handlers) createProperty(w http.ResponseWriter, r *http.Request) {
	var d domain.PropertyDraft
	if !decodeJSON(w, r, &d) {
		return
	}
	t := mustTenant(r)
	p, err := h.C.Create(r.Context(), t.ID, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObservePropertyWrite(t.ID, "create")
	w.Header().Set("Location", "/v1/properties/"+p.ID)
	writeData(w, http.StatusCreated, p)
}

func (h *Handlers) updateProperty(w http.ResponseWriter, r *http.Request) {
	var patch domain.PropertyPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	t := mustTenant(r)
	p, err := h.C.Update(r.Context(), t.ID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObservePropertyWrite(t.ID, "update")
	writeData(w, http.StatusOK, p)
}

func (h *Handlers) deleteProperty(w http.ResponseWriter, r *http.Request) {
	t := mustTenant(r)
	if err := h.C.Delete(r.Context(), t.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObservePropertyWrite(t.ID, "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Q.Stats(r.Context(), mustTenant(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, st)
}

type sitemapEntry struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Cover     string    `json:"cover,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *Handlers) sitemap(w http.ResponseWriter, r *http.Request) {
	all, err := h.Q.All(r.Context(), mustTenant(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]sitemapEntry, 0, len(all))
	for _, p := range all {
		out = append(out, sitemapEntry{Slug: p.Slug, Title: p.Title, Cover: p.Cover(), UpdatedAt: p.UpdatedAt})
	}
	writeETagged(w, r, out)
}

// ---- leads ----

func (h *Handlers) createLead(w http.ResponseWriter, r *http.Request) {
	var d domain.LeadDraft
	if !decodeJSON(w, r, &d) {
		return
	}
	t := mustTenant(r)
	l, err := h.L.CreateLead(r.Context(), t.ID, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveLead(t.ID, string(l.Interest))
	writeData(w, http.StatusCreated, l)
}

type leadList struct {
	Items      []domain.Lead `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

func (h *Handlers) listLeads(w http.ResponseWriter, r *http.Request) {
	q, err := parseLeadQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, total, err := h.L.ListLeads(r.Context(), mustTenant(r).ID, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pg := q.Page.Normalize()
	writeData(w, http.StatusOK, leadList{
		Items: items, Total: total,
		Page: pg.Page, PageSize: pg.PageSize, TotalPages: pg.TotalPages(total),
	})
}

func parseLeadQuery(r *http.Request) (domain.LeadQuery, error) {
	v := r.URL.Query()
	var q domain.LeadQuery
	if s := strings.TrimSpace(v.Get("status")); s != "" {
		st := domain.LeadStatus(strings.ToLower(s))
		if !st.Valid() {
			return q, &domain.InvalidFilterError{Field: "status", Value: s}
		}
		q.Status = &st
	}
	for _, f := range []struct {
		key string
		dst *int
	}{{"page", &q.Page.Page}, {"pageSize", &q.Page.PageSize}} {
		s := strings.TrimSpace(v.Get(f.key))
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return q, &domain.InvalidFilterError{Field: f.key, Value: s}
		}
		*f.dst = n
	}
	q.Page.PageSize = min(q.Page.PageSize, domain.MaxPageSize)
	return q, nil
}

func (h *Handlers) getLead(w http.ResponseWriter, r *http.Request) {
	l, err := h.L.GetLead(r.Context(), mustTenant(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, l)
}

func (h *Handlers) updateLead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status domain.LeadStatus `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	l, err := h.L.UpdateStatus(r.Context(), mustTenant(r).ID, chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, l)
}

// Package handler exposes the content HTTP surface: notices, inquiries
// and the document workflow.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"isleport/internal/content/models"
	"isleport/internal/content/query"
	"isleport/internal/content/service"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
	"isleport/pkg/platform/httputil"
	"isleport/pkg/requestcontext"
)

type Handler struct {
	svc      *service.Service
	composer *query.Composer
}

func New(svc *service.Service, composer *query.Composer) *Handler {
	return &Handler{svc: svc, composer: composer}
}

// Routes mounts the content endpoints. Callers wrap them with actor
// authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/notices", func(r chi.Router) {
		r.Get("/", h.listNotices)
		r.Post("/", h.createNotice)
	})
	r.Route("/inquiries", func(r chi.Router) {
		r.Get("/", h.listInquiries)
		r.Post("/", h.createInquiry)
	})
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.listDocuments)
		r.Post("/", h.createDocument)
		r.Get("/{documentID}", h.getDocument)
		r.Post("/{documentID}/versions", h.createDocumentVersion)
		r.Post("/{documentID}/status", h.changeDocumentStatus)
	})
}

type createContentRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *Handler) createNotice(w http.ResponseWriter, r *http.Request) {
	var req createContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	notice, err := h.svc.CreateNotice(r.Context(), requestcontext.Actor(r.Context()), req.Title, req.Body)
	if err != nil && !dErrors.HasCode(err, dErrors.CodePartialFanout) {
		httputil.WriteError(w, err)
		return
	}
	writeCreated(w, notice, err)
}

func (h *Handler) listNotices(w http.ResponseWriter, r *http.Request) {
	filters, page, err := listParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.composer.ListNotices(r.Context(), requestcontext.Actor(r.Context()), filters, page)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) createInquiry(w http.ResponseWriter, r *http.Request) {
	var req createContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	inquiry, err := h.svc.CreateInquiry(r.Context(), requestcontext.Actor(r.Context()), req.Title, req.Body)
	if err != nil && !dErrors.HasCode(err, dErrors.CodePartialFanout) {
		httputil.WriteError(w, err)
		return
	}
	writeCreated(w, inquiry, err)
}

func (h *Handler) listInquiries(w http.ResponseWriter, r *http.Request) {
	filters, page, err := listParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.composer.ListInquiries(r.Context(), requestcontext.Actor(r.Context()), filters, page)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type createDocumentRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	document, err := h.svc.CreateDocument(r.Context(), requestcontext.Actor(r.Context()), req.Name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, document)
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	filters, page, err := listParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.composer.ListDocuments(r.Context(), requestcontext.Actor(r.Context()), filters, page)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	document, err := h.svc.GetDocument(r.Context(), requestcontext.Actor(r.Context()), documentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, document)
}

func (h *Handler) createDocumentVersion(w http.ResponseWriter, r *http.Request) {
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	document, err := h.svc.CreateDocumentVersion(r.Context(), requestcontext.Actor(r.Context()), documentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, document)
}

type changeStatusRequest struct {
	Status models.DocumentStatus `json:"status"`
	Reason string                `json:"reason"`
}

func (h *Handler) changeDocumentStatus(w http.ResponseWriter, r *http.Request) {
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	document, err := h.svc.ChangeDocumentStatus(r.Context(), requestcontext.Actor(r.Context()), documentID, req.Status, req.Reason)
	if err != nil && !dErrors.HasCode(err, dErrors.CodePartialFanout) {
		httputil.WriteError(w, err)
		return
	}
	writeOK(w, document, err)
}

// writeCreated renders a created resource, flagging incomplete fan-out
// so clients can distinguish it from a clean success.
func writeCreated(w http.ResponseWriter, payload any, err error) {
	writeWithFanoutFlag(w, http.StatusCreated, payload, err)
}

func writeOK(w http.ResponseWriter, payload any, err error) {
	writeWithFanoutFlag(w, http.StatusOK, payload, err)
}

func writeWithFanoutFlag(w http.ResponseWriter, status int, payload any, err error) {
	if err != nil {
		httputil.WriteJSON(w, http.StatusMultiStatus, map[string]any{
			"result":  payload,
			"warning": string(dErrors.CodePartialFanout),
		})
		return
	}
	httputil.WriteJSON(w, status, payload)
}

func listParams(r *http.Request) (models.Filters, models.Page, error) {
	q := r.URL.Query()

	filters := models.Filters{
		Search: q.Get("search"),
		Status: models.DocumentStatus(q.Get("status")),
	}
	if raw := q.Get("created_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Filters{}, models.Page{}, dErrors.New(dErrors.CodeInvalidInput, "created_from must be RFC 3339")
		}
		filters.CreatedFrom = &t
	}
	if raw := q.Get("created_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Filters{}, models.Page{}, dErrors.New(dErrors.CodeInvalidInput, "created_to must be RFC 3339")
		}
		filters.CreatedTo = &t
	}
	if raw := q.Get("region_id"); raw != "" {
		regionID, err := id.ParseRegionID(raw)
		if err != nil {
			return models.Filters{}, models.Page{}, err
		}
		filters.RegionID = regionID
	}
	if raw := q.Get("island_id"); raw != "" {
		islandID, err := id.ParseIslandID(raw)
		if err != nil {
			return models.Filters{}, models.Page{}, err
		}
		filters.IslandID = islandID
	}

	page := models.Page{
		Number: intParam(q.Get("page"), 1),
		Size:   intParam(q.Get("page_size"), 20),
		Sort:   models.SortOrder(q.Get("sort")),
	}
	return filters, page, nil
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

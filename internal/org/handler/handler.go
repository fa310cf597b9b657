// Package handler exposes the org administration surface: regions,
// islands, user registration and verification.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"isleport/internal/org/service"
	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
	"isleport/pkg/platform/httputil"
	"isleport/pkg/requestcontext"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// AdminRoutes mounts the operator-only org surface. Callers guard it
// with the admin token middleware.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Route("/regions", func(r chi.Router) {
		r.Get("/", h.listRegions)
		r.Post("/", h.createRegion)
		r.Delete("/{regionID}", h.deleteRegion)
		r.Get("/{regionID}/islands", h.listIslands)
		r.Post("/{regionID}/islands", h.createIsland)
	})
	r.Delete("/islands/{islandID}", h.deleteIsland)
	r.Post("/users", h.registerUser)
	r.Get("/users/{userID}", h.getUser)
	r.Post("/users/{userID}/verify", h.verifyUser)
}

// ActorRoutes mounts the self-service org surface.
func (h *Handler) ActorRoutes(r chi.Router) {
	r.Post("/verification-requests", h.requestVerification)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createRegion(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	region, err := h.svc.CreateRegion(r.Context(), req.Name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, region)
}

func (h *Handler) listRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.svc.ListRegions(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, regions)
}

func (h *Handler) deleteRegion(w http.ResponseWriter, r *http.Request) {
	regionID, err := id.ParseRegionID(chi.URLParam(r, "regionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteRegion(r.Context(), regionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createIsland(w http.ResponseWriter, r *http.Request) {
	regionID, err := id.ParseRegionID(chi.URLParam(r, "regionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	island, err := h.svc.CreateIsland(r.Context(), regionID, req.Name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, island)
}

func (h *Handler) listIslands(w http.ResponseWriter, r *http.Request) {
	regionID, err := id.ParseRegionID(chi.URLParam(r, "regionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	islands, err := h.svc.ListIslands(r.Context(), regionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, islands)
}

func (h *Handler) deleteIsland(w http.ResponseWriter, r *http.Request) {
	islandID, err := id.ParseIslandID(chi.URLParam(r, "islandID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteIsland(r.Context(), islandID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type registerUserRequest struct {
	Name      string        `json:"name"`
	Role      id.Role       `json:"role"`
	RegionIDs []id.RegionID `json:"region_ids"`
	IslandIDs []id.IslandID `json:"island_ids"`
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	user, err := h.svc.RegisterUser(r.Context(), req.Name, req.Role, req.RegionIDs, req.IslandIDs)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodePartialFanout) {
			httputil.WriteJSON(w, http.StatusMultiStatus, map[string]any{
				"result":  user,
				"warning": string(dErrors.CodePartialFanout),
			})
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) verifyUser(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.svc.VerifyUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) requestVerification(w http.ResponseWriter, r *http.Request) {
	actor := requestcontext.Actor(r.Context())
	user, err := h.svc.RequestVerification(r.Context(), actor.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, user)
}

package controllers

import (
	"net/http"

	"github.com/bazarly/bazarly-backend/api/responses"
	"github.com/bazarly/bazarly-backend/api/validators"
	"github.com/bazarly/bazarly-backend/internal/agents"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/logger"
)

type registerAgentRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=120"`
	Phone string `json:"phone" validate:"required,min=8,max=20"`
}

// AgentRegister creates the delivery agent profile for the authenticated
// subject. Registration starts offline.
func AgentRegister(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agent service unavailable"))
			return
		}

		agentID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req registerAgentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agent, err := svc.Register(r.Context(), agents.RegisterInput{
			ID:    agentID,
			Name:  req.Name,
			Phone: req.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, agent)
	}
}

// AgentProfile returns the agent's own registry row, including the active
// order slot.
func AgentProfile(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agent service unavailable"))
			return
		}

		agentID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agent, err := svc.GetAgent(r.Context(), agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, agent)
	}
}

type presenceRequest struct {
	Online *bool `json:"online" validate:"required"`
}

// AgentSetOnline toggles the agent's shift. Going offline also pauses offers.
func AgentSetOnline(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agent service unavailable"))
			return
		}

		agentID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req presenceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetOnline(r.Context(), agentID, *req.Online); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"online": *req.Online})
	}
}

type availabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// AgentSetAvailable toggles offer eligibility without ending the shift.
func AgentSetAvailable(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agent service unavailable"))
			return
		}

		agentID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req availabilityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetAvailable(r.Context(), agentID, *req.Available); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"available": *req.Available})
	}
}

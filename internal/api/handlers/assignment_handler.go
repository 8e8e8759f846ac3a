package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
)

// Assigner selects a provider for a lead and records the assignment
type Assigner interface {
	Assign(ctx context.Context, leadID, rawLocation string) (*entities.Assignment, error)
}

// AssignmentHandler handles lead assignment HTTP requests
type AssignmentHandler struct {
	assignmentService Assigner
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService Assigner) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
	}
}

type assignRequest struct {
	LeadID      string `json:"lead_id"`
	RawLocation string `json:"raw_location"`
}

// AssignLead handles POST /api/assignments
func (h *AssignmentHandler) AssignLead(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LeadID == "" {
		respondWithError(w, http.StatusBadRequest, "lead_id is required")
		return
	}

	assignment, err := h.assignmentService.Assign(r.Context(), req.LeadID, req.RawLocation)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"assignment":  assignment,
		"provider_id": assignment.ProviderID,
	})
}

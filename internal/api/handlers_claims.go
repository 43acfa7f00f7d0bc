package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/claimflow/internal/common"
	"github.com/Veraticus/claimflow/internal/model"
	"github.com/Veraticus/claimflow/internal/service"
	"github.com/Veraticus/claimflow/internal/workflow"
)

type createClaimRequest struct {
	Title            string         `json:"title" binding:"required"`
	Description      string         `json:"description" binding:"required"`
	Category         model.Category `json:"category" binding:"required,oneof=transport accommodation meals office_supply other"`
	Amount           float64        `json:"amount" binding:"required,gt=0"`
	ReceiptReference string         `json:"receipt_reference" binding:"required"`
}

type decisionRequest struct {
	Action model.Action `json:"action" binding:"required,oneof=approve reject"`
	Notes  string       `json:"notes"`
}

// claimResponse pairs a claim with what the viewer may do to it next, so
// callers never need their own copy of the transition table.
type claimResponse struct {
	Claim          *model.Claim   `json:"claim"`
	AllowedActions []model.Action `json:"allowed_actions"`
}

func (s *Server) handleCreateClaim(c *gin.Context) {
	var req createClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := principal(c)
	user, err := s.store.GetUserByID(c.Request.Context(), p.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	claim, err := s.engine.CreateClaim(c.Request.Context(), workflow.CreateClaimInput{
		EmployeeID:       user.ID,
		EmployeeName:     user.FullName,
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Amount:           req.Amount,
		ReceiptReference: req.ReceiptReference,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, claim)
}

func (s *Server) handleListClaims(c *gin.Context) {
	p := principal(c)

	var filter service.ClaimFilter
	if raw := c.Query("status"); raw != "" {
		status := model.Status(raw)
		if !status.Valid() {
			writeError(c, fmt.Errorf("%w: unknown status %q", common.ErrValidation, raw))
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("category"); raw != "" {
		category := model.Category(raw)
		if !category.Valid() {
			writeError(c, fmt.Errorf("%w: unknown category %q", common.ErrValidation, raw))
			return
		}
		filter.Category = &category
	}

	claims, err := s.engine.ListClaims(c.Request.Context(), p.Role, p.UserID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	c.JSON(http.StatusOK, claims)
}

func (s *Server) handleGetClaim(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	p := principal(c)
	claim, err := s.engine.GetClaim(c.Request.Context(), id, p.Role, p.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, claimResponse{
		Claim:          claim,
		AllowedActions: workflow.AllowedActions(p.Role, claim.Status),
	})
}

func (s *Server) handleDeleteClaim(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	p := principal(c)
	if err := s.engine.DeleteClaim(c.Request.Context(), id, p.Role, p.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "claim deleted"})
}

func (s *Server) handleStats(c *gin.Context) {
	p := principal(c)
	stats, err := s.engine.Stats(c.Request.Context(), p.Role, p.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleManagerQueue(c *gin.Context) {
	s.writeQueue(c, model.StatusPending)
}

func (s *Server) handleFinanceQueue(c *gin.Context) {
	s.writeQueue(c, model.StatusApprovedManager)
}

func (s *Server) writeQueue(c *gin.Context, status model.Status) {
	p := principal(c)
	claims, err := s.engine.ListClaims(c.Request.Context(), p.Role, p.UserID, service.ClaimFilter{Status: &status})
	if err != nil {
		writeError(c, err)
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	c.JSON(http.StatusOK, claims)
}

func (s *Server) handleManagerDecision(c *gin.Context) {
	s.decide(c)
}

func (s *Server) handleFinanceDecision(c *gin.Context) {
	s.decide(c)
}

// decide applies an approve/reject decision for the authenticated
// principal. Stage legality is entirely the engine's business; the route
// groups only gate by role.
func (s *Server) decide(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := principal(c)
	claim, err := s.engine.Transition(c.Request.Context(), id, p.Role, p.UserID, req.Action, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

func (s *Server) handleMarkPaid(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	p := principal(c)
	claim, err := s.engine.Transition(c.Request.Context(), id, p.Role, p.UserID, model.ActionMarkPaid, "")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

func claimID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return 0, false
	}
	return id, true
}

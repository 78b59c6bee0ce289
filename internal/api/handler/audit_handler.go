package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/ports"
)

// AuditHandler exposes the audit trail. All routes are mounted behind the
// admin-only role gate.
type AuditHandler struct {
	repo ports.AuditRepository
}

func NewAuditHandler(repo ports.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// ListDecisions returns recent authorization decisions.
//
// @Summary      List authorization decisions
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        actor_id  query     int     false  "Filter by actor"
// @Param        outcome   query     string  false  "allow or deny"
// @Param        risk      query     string  false  "low, medium, or high"
// @Param        limit     query     int     false  "Max records (default 100)"
// @Param        offset    query     int     false  "Skip records"
// @Success      200       {array}   auditDecisionResponse
// @Failure      403       {object}  errorResponse
// @Router       /api/audit [get]
func (h *AuditHandler) ListDecisions(c echo.Context) error {
	actorID, _ := strconv.ParseInt(c.QueryParam("actor_id"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	offset, _ := strconv.ParseInt(c.QueryParam("offset"), 10, 64)

	records, err := h.repo.ListDecisions(c.Request().Context(), ports.AuditQuery{
		ActorID: actorID,
		Outcome: domain.Outcome(c.QueryParam("outcome")),
		Risk:    domain.RiskLevel(c.QueryParam("risk")),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAuditResponses(records))
}

// ListViolations returns denied attempts, optionally filtered by risk level.
//
// @Summary      List access violations
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        risk   query     string  false  "low, medium, or high"
// @Param        limit  query     int     false  "Max records (default 100)"
// @Success      200    {array}   auditDecisionResponse
// @Failure      403    {object}  errorResponse
// @Router       /api/audit/violations [get]
func (h *AuditHandler) ListViolations(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	records, err := h.repo.ListViolations(c.Request().Context(), domain.RiskLevel(c.QueryParam("risk")), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAuditResponses(records))
}

// Stats summarises the decision log over a trailing window.
//
// @Summary      Audit statistics
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        days  query     int  false  "Window in days (default 30)"
// @Success      200   {object}  ports.AuditStats
// @Failure      403   {object}  errorResponse
// @Router       /api/audit/stats [get]
func (h *AuditHandler) Stats(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	if days <= 0 || days > 365 {
		days = 30
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	stats, err := h.repo.Stats(c.Request().Context(), since, days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func toAuditResponses(records []domain.DecisionRecord) []auditDecisionResponse {
	resp := make([]auditDecisionResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, toAuditDecisionResponse(r))
	}
	return resp
}

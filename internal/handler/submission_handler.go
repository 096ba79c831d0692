package handler

import (
	"net/http"
	"strconv"
	"time"

	"sidopi/internal/middleware"
	"sidopi/internal/model"
	"sidopi/internal/service"
	"sidopi/pkg/pagination"
	"sidopi/pkg/response"

	"github.com/gin-gonic/gin"
)

// defaultExpiryDays is how long a submission may sit PENDING before the
// sweep marks it EXPIRED
const defaultExpiryDays = 30

type SubmissionHandler struct {
	submissionService     service.SubmissionService
	recommendationService service.RecommendationService
}

func NewSubmissionHandler(
	submissionService service.SubmissionService,
	recommendationService service.RecommendationService,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService:     submissionService,
		recommendationService: recommendationService,
	}
}

// RegisterRoutes binds the submission endpoints to the gin RouterGroup
func (h *SubmissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	allRoles := middleware.RequireRole(model.RolePPL, model.RolePOPT, model.RoleDinas, model.RoleAdmin)

	submissions := router.Group("/submissions")
	{
		submissions.POST("", allRoles, h.CreateSubmission)
		submissions.GET("", allRoles, h.ListSubmissions)
		submissions.GET("/:id", allRoles, h.GetSubmission)
		submissions.PATCH("/:id/status", middleware.RequireRole(model.RoleDinas, model.RoleAdmin, model.RolePOPT), h.UpdateStatus)
		submissions.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteSubmission)
		submissions.GET("/:id/recommendations", middleware.RequireRole(model.RoleDinas, model.RoleAdmin), h.GetRecommendations)
		submissions.POST("/expire", middleware.RequireRole(model.RoleAdmin), h.ExpireStale)
	}
}

// CreateSubmission handles POST /submissions
// @Summary      Create submission
// @Description  Creates a new distribution submission. Field officers are bound to their role's types; DINAS/ADMIN may create any type with an explicit submission_type.
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateSubmissionRequest  true  "Create Submission Payload"
// @Success      201      {object}  response.Response{data=model.Submission}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /submissions [post]
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var req service.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	userRole := c.GetString("userRole")

	submission, err := h.submissionService.CreateSubmission(c.Request.Context(), req, userID, userRole)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, submission))
}

// ListSubmissions handles GET /submissions with filters; field officers only
// see their own submissions
// @Summary      List submissions
// @Description  Retrieves a paginated, filterable list of submissions
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        status           query     string  false  "Filter by status"
// @Param        submission_type  query     string  false  "Filter by type"
// @Param        district         query     string  false  "Filter by district"
// @Param        page             query     int     false  "Page number (default 1)"
// @Param        limit            query     int     false  "Items per page (default 20)"
// @Success      200              {object}  response.Response{data=object}
// @Router       /submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.SubmissionFilter{
		Status:         c.Query("status"),
		SubmissionType: c.Query("submission_type"),
		District:       c.Query("district"),
		Page:           params.Page,
		Limit:          params.Limit,
	}

	submissions, total, err := h.submissionService.ListSubmissions(c.Request.Context(), filter, c.GetString("userID"), c.GetString("userRole"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch submissions"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "submissions", submissions, total, params.Page, params.Limit))
}

// GetSubmission handles GET /submissions/:id
// @Summary      Get submission
// @Description  Fetch a single submission with items, farmer group and actors
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Submission ID"
// @Success      200  {object}  response.Response{data=model.Submission}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	submission, err := h.submissionService.GetSubmission(c.Request.Context(), c.Param("id"), c.GetString("userID"), c.GetString("userRole"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

// UpdateStatus handles PATCH /submissions/:id/status — the single entry
// point into the state machine
// @Summary      Update submission status
// @Description  Moves a submission through its lifecycle; approval statuses carry per-item approved quantities
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Submission ID"
// @Param        payload  body      service.UpdateStatusRequest  true  "Status Update Payload"
// @Success      200      {object}  response.Response{data=model.Submission}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /submissions/{id}/status [patch]
func (h *SubmissionHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	submission, err := h.submissionService.UpdateStatus(c.Request.Context(), c.Param("id"), req, c.GetString("userID"), c.GetString("userRole"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

// DeleteSubmission handles DELETE /submissions/:id
// @Summary      Delete submission
// @Description  Physically deletes a PENDING or CANCELLED submission (admin only)
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Submission ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /submissions/{id} [delete]
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	err := h.submissionService.DeleteSubmission(c.Request.Context(), c.Param("id"), c.GetString("userID"), c.GetString("userRole"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Submission deleted successfully"))
}

// GetRecommendations handles GET /submissions/:id/recommendations
// @Summary      Get medicine recommendations
// @Description  Scores the active medicine pool against the submission's reported pests
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id                    path      string  true   "Submission ID"
// @Param        include_alternatives  query     bool    false  "Include ranked alternatives"
// @Param        max_alternatives      query     int     false  "Alternative cap (max 10)"
// @Param        risk_tolerance        query     string  false  "low, medium or high"
// @Success      200                   {object}  response.Response{data=service.RecommendationResponse}
// @Failure      404                   {object}  response.Response
// @Router       /submissions/{id}/recommendations [get]
func (h *SubmissionHandler) GetRecommendations(c *gin.Context) {
	maxAlternatives, _ := strconv.Atoi(c.DefaultQuery("max_alternatives", "5"))
	opts := service.RecommendationOptions{
		IncludeAlternatives: c.DefaultQuery("include_alternatives", "false") == "true",
		MaxAlternatives:     maxAlternatives,
		RiskTolerance:       c.Query("risk_tolerance"),
	}

	recommendations, err := h.recommendationService.GetRecommendations(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, recommendations))
}

// ExpireStale handles POST /submissions/expire — the manual trigger for the
// expiry sweep that also runs on a schedule
// @Summary      Expire stale submissions
// @Description  Marks PENDING submissions older than the given number of days as EXPIRED
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        days  query     int  false  "Age threshold in days (default 30)"
// @Success      200   {object}  response.Response{data=object}
// @Router       /submissions/expire [post]
func (h *SubmissionHandler) ExpireStale(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultExpiryDays)))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "days must be a positive integer"))
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	expired, err := h.submissionService.ExpireStale(c.Request.Context(), cutoff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"expired": expired,
	}))
}

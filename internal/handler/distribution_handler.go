package handler

import (
	"net/http"

	"sidopi/internal/middleware"
	"sidopi/internal/model"
	"sidopi/internal/service"
	"sidopi/pkg/pagination"
	"sidopi/pkg/response"

	"github.com/gin-gonic/gin"
)

type DistributionHandler struct {
	distributionService service.DistributionService
}

func NewDistributionHandler(distributionService service.DistributionService) *DistributionHandler {
	return &DistributionHandler{distributionService: distributionService}
}

// RegisterRoutes binds the distribution record endpoints to the gin RouterGroup
func (h *DistributionHandler) RegisterRoutes(router *gin.RouterGroup) {
	viewers := middleware.RequireRole(model.RolePOPT, model.RoleDinas, model.RoleAdmin)

	distributions := router.Group("/distributions")
	{
		distributions.GET("", viewers, h.ListRecords)
		distributions.GET("/:id", viewers, h.GetRecord)
		distributions.GET("/submission/:submissionId", viewers, h.GetRecordBySubmission)
	}
}

// ListRecords handles GET /distributions
// @Summary      List distribution records
// @Description  Retrieves a paginated list of berita acara records, newest first
// @Tags         distributions
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /distributions [get]
func (h *DistributionHandler) ListRecords(c *gin.Context) {
	params := pagination.Parse(c)

	records, total, err := h.distributionService.ListRecords(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch distribution records"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "records", records, total, params.Page, params.Limit))
}

// GetRecord handles GET /distributions/:id
// @Summary      Get distribution record
// @Description  Fetch a single berita acara with its item snapshot
// @Tags         distributions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Record ID"
// @Success      200  {object}  response.Response{data=model.DistributionRecord}
// @Failure      404  {object}  response.Response
// @Router       /distributions/{id} [get]
func (h *DistributionHandler) GetRecord(c *gin.Context) {
	record, err := h.distributionService.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// GetRecordBySubmission handles GET /distributions/submission/:submissionId
// @Summary      Get distribution record by submission
// @Description  Fetch the berita acara generated for a given submission
// @Tags         distributions
// @Produce      json
// @Security     BearerAuth
// @Param        submissionId  path      string  true  "Submission ID"
// @Success      200           {object}  response.Response{data=model.DistributionRecord}
// @Failure      404           {object}  response.Response
// @Router       /distributions/submission/{submissionId} [get]
func (h *DistributionHandler) GetRecordBySubmission(c *gin.Context) {
	record, err := h.distributionService.GetRecordBySubmission(c.Request.Context(), c.Param("submissionId"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

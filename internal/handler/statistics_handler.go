package handler

import (
	"net/http"

	"sidopi/internal/middleware"
	"sidopi/internal/model"
	"sidopi/internal/service"
	"sidopi/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

// RegisterRoutes binds the statistics endpoint to the gin RouterGroup
func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/statistics", middleware.RequireRole(model.RoleDinas, model.RoleAdmin), h.GetStatistics)
}

// GetStatistics handles GET /statistics
// @Summary      Get distribution statistics
// @Description  Aggregates submission and distribution activity over a date range (default last 30 days)
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  false  "Range start (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Range end (YYYY-MM-DD)"
// @Success      200         {object}  response.Response{data=model.StatisticsResponse}
// @Failure      400         {object}  response.Response
// @Router       /statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

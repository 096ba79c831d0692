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

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterRoutes binds the notification endpoints to the gin RouterGroup
func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	allRoles := middleware.RequireRole(model.RolePPL, model.RolePOPT, model.RoleDinas, model.RoleAdmin)

	notifications := router.Group("/notifications")
	{
		notifications.GET("", allRoles, h.ListNotifications)
		notifications.PATCH("/:id/read", allRoles, h.MarkRead)
		notifications.POST("/read-all", allRoles, h.MarkAllRead)
	}
}

// ListNotifications handles GET /notifications for the authenticated user
// @Summary      List notifications
// @Description  Retrieves the authenticated user's notifications, newest first
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread_only  query     bool  false  "Only unread notifications"
// @Param        page         query     int   false  "Page number (default 1)"
// @Param        limit        query     int   false  "Items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Router       /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	params := pagination.Parse(c)
	unreadOnly := c.DefaultQuery("unread_only", "false") == "true"

	notifications, total, err := h.notificationService.ListNotifications(c.Request.Context(), c.GetString("userID"), unreadOnly, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch notifications"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "notifications", notifications, total, params.Page, params.Limit))
}

// MarkRead handles PATCH /notifications/:id/read
// @Summary      Mark notification read
// @Description  Marks one of the authenticated user's notifications as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Notification marked as read"))
}

// MarkAllRead handles POST /notifications/read-all
// @Summary      Mark all notifications read
// @Description  Marks all the authenticated user's notifications as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(c.Request.Context(), c.GetString("userID")); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "All notifications marked as read"))
}

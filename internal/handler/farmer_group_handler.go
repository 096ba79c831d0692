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

type FarmerGroupHandler struct {
	farmerGroupService service.FarmerGroupService
}

func NewFarmerGroupHandler(farmerGroupService service.FarmerGroupService) *FarmerGroupHandler {
	return &FarmerGroupHandler{farmerGroupService: farmerGroupService}
}

// RegisterRoutes binds the farmer group endpoints to the gin RouterGroup
func (h *FarmerGroupHandler) RegisterRoutes(router *gin.RouterGroup) {
	allRoles := middleware.RequireRole(model.RolePPL, model.RolePOPT, model.RoleDinas, model.RoleAdmin)
	managers := middleware.RequireRole(model.RoleDinas, model.RoleAdmin)

	groups := router.Group("/farmer-groups")
	{
		groups.GET("", allRoles, h.ListFarmerGroups)
		groups.GET("/:id", allRoles, h.GetFarmerGroup)
		groups.POST("", managers, h.CreateFarmerGroup)
		groups.PUT("/:id", managers, h.UpdateFarmerGroup)
		groups.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteFarmerGroup)
	}
}

// ListFarmerGroups handles GET /farmer-groups
// @Summary      List farmer groups
// @Description  Retrieves a paginated list of farmer groups
// @Tags         farmer-groups
// @Produce      json
// @Security     BearerAuth
// @Param        search    query     string  false  "Filter by name"
// @Param        district  query     string  false  "Filter by district"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Router       /farmer-groups [get]
func (h *FarmerGroupHandler) ListFarmerGroups(c *gin.Context) {
	params := pagination.Parse(c)

	groups, total, err := h.farmerGroupService.ListFarmerGroups(c.Request.Context(), params.Page, params.Limit, c.Query("search"), c.Query("district"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch farmer groups"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "farmer_groups", groups, total, params.Page, params.Limit))
}

// GetFarmerGroup handles GET /farmer-groups/:id
// @Summary      Get farmer group
// @Description  Fetch a single farmer group's detail
// @Tags         farmer-groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Farmer Group ID"
// @Success      200  {object}  response.Response{data=model.FarmerGroup}
// @Failure      404  {object}  response.Response
// @Router       /farmer-groups/{id} [get]
func (h *FarmerGroupHandler) GetFarmerGroup(c *gin.Context) {
	group, err := h.farmerGroupService.GetFarmerGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, group))
}

// CreateFarmerGroup handles POST /farmer-groups
// @Summary      Create farmer group
// @Description  Registers a new kelompok tani
// @Tags         farmer-groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateFarmerGroupRequest  true  "Create Farmer Group Payload"
// @Success      201      {object}  response.Response{data=model.FarmerGroup}
// @Failure      400      {object}  response.Response
// @Router       /farmer-groups [post]
func (h *FarmerGroupHandler) CreateFarmerGroup(c *gin.Context) {
	var req service.CreateFarmerGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	group, err := h.farmerGroupService.CreateFarmerGroup(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, group))
}

// UpdateFarmerGroup handles PUT /farmer-groups/:id
// @Summary      Update farmer group
// @Description  Updates a farmer group's details, including active flag
// @Tags         farmer-groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Farmer Group ID"
// @Param        payload  body      service.UpdateFarmerGroupRequest  true  "Update Farmer Group Payload"
// @Success      200      {object}  response.Response{data=model.FarmerGroup}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /farmer-groups/{id} [put]
func (h *FarmerGroupHandler) UpdateFarmerGroup(c *gin.Context) {
	var req service.UpdateFarmerGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	group, err := h.farmerGroupService.UpdateFarmerGroup(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, group))
}

// DeleteFarmerGroup handles DELETE /farmer-groups/:id
// @Summary      Delete farmer group
// @Description  Soft deletes a farmer group
// @Tags         farmer-groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Farmer Group ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /farmer-groups/{id} [delete]
func (h *FarmerGroupHandler) DeleteFarmerGroup(c *gin.Context) {
	err := h.farmerGroupService.DeleteFarmerGroup(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Farmer group deleted successfully"))
}

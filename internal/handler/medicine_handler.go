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

type MedicineHandler struct {
	medicineService service.MedicineService
}

func NewMedicineHandler(medicineService service.MedicineService) *MedicineHandler {
	return &MedicineHandler{medicineService: medicineService}
}

// RegisterRoutes binds the medicine and stock endpoints to the gin RouterGroup
func (h *MedicineHandler) RegisterRoutes(router *gin.RouterGroup) {
	allRoles := middleware.RequireRole(model.RolePPL, model.RolePOPT, model.RoleDinas, model.RoleAdmin)
	managers := middleware.RequireRole(model.RoleDinas, model.RoleAdmin)

	medicines := router.Group("/medicines")
	{
		medicines.GET("", allRoles, h.ListMedicines)
		medicines.GET("/:id", allRoles, h.GetMedicine)
		medicines.POST("", managers, h.CreateMedicine)
		medicines.PUT("/:id", managers, h.UpdateMedicine)
		medicines.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteMedicine)
		medicines.POST("/:id/lots", managers, h.AddStockLot)
		medicines.GET("/:id/lots", managers, h.ListStockLots)
		medicines.GET("/:id/movements", managers, h.ListMovements)
	}
}

// ListMedicines handles GET /medicines
// @Summary      List medicines
// @Description  Retrieves a paginated list of medicines with current stock
// @Tags         medicines
// @Produce      json
// @Security     BearerAuth
// @Param        search    query     string  false  "Filter by name"
// @Param        category  query     string  false  "Filter by category"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Router       /medicines [get]
func (h *MedicineHandler) ListMedicines(c *gin.Context) {
	params := pagination.Parse(c)

	medicines, total, err := h.medicineService.ListMedicines(c.Request.Context(), params.Page, params.Limit, c.Query("search"), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch medicines"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "medicines", medicines, total, params.Page, params.Limit))
}

// GetMedicine handles GET /medicines/:id
// @Summary      Get medicine
// @Description  Fetch a single medicine's detail with current total stock
// @Tags         medicines
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Medicine ID"
// @Success      200  {object}  response.Response{data=service.MedicineResponse}
// @Failure      404  {object}  response.Response
// @Router       /medicines/{id} [get]
func (h *MedicineHandler) GetMedicine(c *gin.Context) {
	medicine, err := h.medicineService.GetMedicineDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, medicine))
}

// CreateMedicine handles POST /medicines
// @Summary      Create medicine
// @Description  Registers a new pesticide in the catalog
// @Tags         medicines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateMedicineRequest  true  "Create Medicine Payload"
// @Success      201      {object}  response.Response{data=service.MedicineResponse}
// @Failure      400      {object}  response.Response
// @Router       /medicines [post]
func (h *MedicineHandler) CreateMedicine(c *gin.Context) {
	var req service.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	medicine, err := h.medicineService.CreateMedicine(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, medicine))
}

// UpdateMedicine handles PUT /medicines/:id
// @Summary      Update medicine
// @Description  Updates a medicine's catalog data, including active flag
// @Tags         medicines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Medicine ID"
// @Param        payload  body      service.UpdateMedicineRequest  true  "Update Medicine Payload"
// @Success      200      {object}  response.Response{data=service.MedicineResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /medicines/{id} [put]
func (h *MedicineHandler) UpdateMedicine(c *gin.Context) {
	var req service.UpdateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	medicine, err := h.medicineService.UpdateMedicine(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, medicine))
}

// DeleteMedicine handles DELETE /medicines/:id
// @Summary      Delete medicine
// @Description  Removes a medicine from the catalog
// @Tags         medicines
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Medicine ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /medicines/{id} [delete]
func (h *MedicineHandler) DeleteMedicine(c *gin.Context) {
	err := h.medicineService.DeleteMedicine(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Medicine deleted successfully"))
}

// AddStockLot handles POST /medicines/:id/lots
// @Summary      Add stock lot
// @Description  Records an incoming batch with its expiry date
// @Tags         medicines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Medicine ID"
// @Param        payload  body      service.AddStockLotRequest  true  "Stock Lot Payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /medicines/{id}/lots [post]
func (h *MedicineHandler) AddStockLot(c *gin.Context) {
	var req service.AddStockLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	err := h.medicineService.AddStockLot(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, "Stock lot added"))
}

// ListStockLots handles GET /medicines/:id/lots
// @Summary      List stock lots
// @Description  Lists a medicine's batches ordered by expiry date
// @Tags         medicines
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Medicine ID"
// @Success      200  {object}  response.Response{data=[]model.StockLot}
// @Router       /medicines/{id}/lots [get]
func (h *MedicineHandler) ListStockLots(c *gin.Context) {
	lots, err := h.medicineService.ListStockLots(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch stock lots"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, lots))
}

// ListMovements handles GET /medicines/:id/movements
// @Summary      List stock movements
// @Description  Lists a medicine's stock movement history, newest first
// @Tags         medicines
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Medicine ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /medicines/{id}/movements [get]
func (h *MedicineHandler) ListMovements(c *gin.Context) {
	params := pagination.Parse(c)

	movements, total, err := h.medicineService.ListMovements(c.Request.Context(), c.Param("id"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch stock movements"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "movements", movements, total, params.Page, params.Limit))
}

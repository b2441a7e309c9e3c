package handlers

import (
	"net/http"
	"time"

	"bagcount-gateway/device"
	"bagcount-gateway/models"
	"bagcount-gateway/services"
	"bagcount-gateway/utils"

	"github.com/labstack/echo/v4"
)

// APIHandler handles all API requests of the gateway.
type APIHandler struct {
	batchService    *services.BatchService
	countingService *services.CountingService
	productService  *services.ProductService
	settingsService *services.SettingsService
	historyService  *services.HistoryService
	deviceClient    *device.Client
}

// NewAPIHandler creates a new instance of APIHandler.
func NewAPIHandler(
	batchService *services.BatchService,
	countingService *services.CountingService,
	productService *services.ProductService,
	settingsService *services.SettingsService,
	historyService *services.HistoryService,
	deviceClient *device.Client,
) *APIHandler {
	return &APIHandler{
		batchService:    batchService,
		countingService: countingService,
		productService:  productService,
		settingsService: settingsService,
		historyService:  historyService,
		deviceClient:    deviceClient,
	}
}

// confirmed models the UI confirmation dialog: destructive operations require
// an explicit confirm=true query parameter.
func confirmed(c echo.Context) func() bool {
	return func() bool {
		return utils.GetBoolOrDefault(c.QueryParam("confirm"), false)
	}
}

// ===================================================================
// HEALTH CHECK
// ===================================================================

// HealthCheck provides a simple health status of the service.
func (h *APIHandler) HealthCheck(c echo.Context) error {
	data := map[string]interface{}{
		"service":   "bagcount-gateway",
		"timestamp": utils.GetUnixTimestamp(),
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Service is healthy", data))
}

// ===================================================================
// PRODUCTS
// ===================================================================

// ListProducts returns the product catalog.
func (h *APIHandler) ListProducts(c echo.Context) error {
	products := h.productService.List()
	data := utils.CreateListResponse(products, len(products), nil)
	return c.JSON(http.StatusOK, utils.SuccessResponse("Products retrieved successfully", data))
}

// CreateProduct adds a product to the catalog.
func (h *APIHandler) CreateProduct(c echo.Context) error {
	var req models.ProductRequest
	if err := c.Bind(&req); err != nil {
		return utils.NewBadRequestError("invalid product payload", err)
	}
	product, err := h.productService.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, utils.SuccessResponse("Product created successfully", product))
}

// UpdateProduct modifies a product in place.
func (h *APIHandler) UpdateProduct(c echo.Context) error {
	var req models.ProductRequest
	if err := c.Bind(&req); err != nil {
		return utils.NewBadRequestError("invalid product payload", err)
	}
	product, err := h.productService.Update(c.Param("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Product updated successfully", product))
}

// DeleteProduct removes a product from the catalog.
func (h *APIHandler) DeleteProduct(c echo.Context) error {
	if err := h.productService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Product deleted successfully", nil))
}

// ===================================================================
// BATCHES & ORDERS
// ===================================================================

// ListBatches returns all saved batches.
func (h *APIHandler) ListBatches(c echo.Context) error {
	batches := h.batchService.ListBatches()
	data := utils.CreateListResponse(batches, len(batches), nil)
	return c.JSON(http.StatusOK, utils.SuccessResponse("Batches retrieved successfully", data))
}

// GetBatch returns one batch with its orders.
func (h *APIHandler) GetBatch(c echo.Context) error {
	batch, err := h.batchService.GetBatch(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Batch retrieved successfully", batch))
}

// DeleteBatch removes a batch after confirmation.
func (h *APIHandler) DeleteBatch(c echo.Context) error {
	if err := h.batchService.DeleteBatch(c.Param("id"), confirmed(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Batch deleted successfully", nil))
}

// OpenWorkingSet starts a new empty batch edit.
func (h *APIHandler) OpenWorkingSet(c echo.Context) error {
	h.batchService.CreateBatch()
	return c.JSON(http.StatusOK, utils.SuccessResponse("New batch opened for editing", nil))
}

// EditBatch loads an existing batch into the working set. Unknown IDs leave
// the working set untouched, matching the silent no-op contract.
func (h *APIHandler) EditBatch(c echo.Context) error {
	h.batchService.LoadBatchForEdit(c.Param("id"))
	data := map[string]interface{}{
		"orders": h.batchService.WorkingSet(),
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Batch loaded for editing", data))
}

// GetWorkingSet returns the orders currently being edited.
func (h *APIHandler) GetWorkingSet(c echo.Context) error {
	orders := h.batchService.WorkingSet()
	data := utils.CreateListResponse(orders, len(orders), nil)
	return c.JSON(http.StatusOK, utils.SuccessResponse("Working set retrieved successfully", data))
}

// AddWorkingOrder appends a validated order to the working set.
func (h *APIHandler) AddWorkingOrder(c echo.Context) error {
	var req models.OrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.NewBadRequestError("invalid order payload", err)
	}
	order, err := h.batchService.AddOrderToWorkingSet(&req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, utils.SuccessResponse("Order added to batch", order))
}

// RemoveWorkingOrder removes the order at the given index after confirmation.
func (h *APIHandler) RemoveWorkingOrder(c echo.Context) error {
	index := utils.GetIntOrDefault(c.Param("index"), -1)
	if err := h.batchService.RemoveOrderFromWorkingSet(index, confirmed(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Order removed from batch", nil))
}

// SaveBatch persists the working set as a batch.
func (h *APIHandler) SaveBatch(c echo.Context) error {
	var req models.SaveBatchRequest
	if err := c.Bind(&req); err != nil {
		return utils.NewBadRequestError("invalid batch payload", err)
	}
	batch, err := h.batchService.SaveBatch(req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, utils.SuccessResponse("Batch saved successfully", batch))
}

// ActivateBatch makes the given batch the active one.
func (h *APIHandler) ActivateBatch(c echo.Context) error {
	h.batchService.SwitchActiveBatch(c.Param("id"))
	return c.JSON(http.StatusOK, utils.SuccessResponse("Active batch switched", nil))
}

// SelectOrder toggles one order's selection flag.
func (h *APIHandler) SelectOrder(c echo.Context) error {
	var req models.SelectOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.NewBadRequestError("invalid selection payload", err)
	}
	if err := h.batchService.SelectOrder(c.Param("id"), req.Selected); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Order selection updated", nil))
}

// SelectAllOnPage toggles selection for every order on the current page.
func (h *APIHandler) SelectAllOnPage(c echo.Context) error {
	var req models.SelectOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.NewBadRequestError("invalid selection payload", err)
	}
	if err := h.batchService.SelectAllOnPage(req.Selected); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Page selection updated", nil))
}

// GetOrderPage returns the current page of the active batch's order list.
func (h *APIHandler) GetOrderPage(c echo.Context) error {
	page := h.batchService.GetPage()
	return c.JSON(http.StatusOK, utils.SuccessResponse("Order page retrieved successfully", page))
}

// Paginate moves within the order list by page number or named move.
func (h *APIHandler) Paginate(c echo.Context) error {
	var req models.PageRequest
	if err := c.Bind(&req); err != nil {
		return utils.NewBadRequestError("invalid pagination payload", err)
	}
	page := h.batchService.Paginate(req.Page, req.Move)
	return c.JSON(http.StatusOK, utils.SuccessResponse("Order page retrieved successfully", page))
}

// ===================================================================
// COUNTING CONTROL
// ===================================================================

// StartCounting begins or resumes a counting run.
func (h *APIHandler) StartCounting(c echo.Context) error {
	if err := h.countingService.Start(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Counting started", h.countingService.Status()))
}

// PauseCounting suspends the run.
func (h *APIHandler) PauseCounting(c echo.Context) error {
	if err := h.countingService.Pause(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Counting paused", h.countingService.Status()))
}

// StopCounting ends the run, reverting unfinished orders to waiting.
func (h *APIHandler) StopCounting(c echo.Context) error {
	if err := h.countingService.Stop(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Counting stopped", h.countingService.Status()))
}

// ResetCounting zeroes all counts after confirmation.
func (h *APIHandler) ResetCounting(c echo.Context) error {
	if err := h.countingService.Reset(c.Request().Context(), confirmed(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Counting reset", h.countingService.Status()))
}

// GetCountingStatus returns the current run view.
func (h *APIHandler) GetCountingStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, utils.SuccessResponse("Counting status retrieved successfully", h.countingService.Status()))
}

// ===================================================================
// SETTINGS
// ===================================================================

// GetSettings returns the current device settings.
func (h *APIHandler) GetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, utils.SuccessResponse("Settings retrieved successfully", h.settingsService.Get()))
}

// UpdateSettings validates and persists new settings.
func (h *APIHandler) UpdateSettings(c echo.Context) error {
	var req models.SettingsRequest
	if err := c.Bind(&req); err != nil {
		return utils.NewBadRequestError("invalid settings payload", err)
	}
	settings, err := h.settingsService.Update(&req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Settings updated successfully", settings))
}

// ApplySettings pushes the saved settings to the device.
func (h *APIHandler) ApplySettings(c echo.Context) error {
	if err := h.settingsService.Apply(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Settings applied to device", nil))
}

// ===================================================================
// HISTORY
// ===================================================================

// GetHistory returns the counting history, newest first.
func (h *APIHandler) GetHistory(c echo.Context) error {
	pagination := utils.GetPaginationParams(c.QueryParam("limit"), c.QueryParam("offset"), 50)
	entries, total, err := h.historyService.List(pagination.Limit, pagination.Offset)
	if err != nil {
		return err
	}
	data := utils.CreateListResponse(entries, int(total), &pagination)
	return c.JSON(http.StatusOK, utils.SuccessResponse("History retrieved successfully", data))
}

// ClearHistory removes all history entries after confirmation.
func (h *APIHandler) ClearHistory(c echo.Context) error {
	if err := h.historyService.Clear(confirmed(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("History cleared", nil))
}

// ===================================================================
// DEVICE
// ===================================================================

// GetDeviceHealth probes the device's status and clock endpoints.
func (h *APIHandler) GetDeviceHealth(c echo.Context) error {
	ctx := c.Request().Context()
	health := models.DeviceHealth{
		LastChecked:     time.Now(),
		LastKnownOnline: h.countingService.DeviceReachable(),
	}

	status, err := h.deviceClient.GetStatus(ctx)
	if err == nil {
		health.Online = true
		health.Status = status.Status
		health.Count = status.Count
		if deviceTime, terr := h.deviceClient.GetCurrentTime(ctx); terr == nil {
			health.IsTimeSynced = deviceTime.IsTimeSynced
		}
	}

	return c.JSON(http.StatusOK, utils.SuccessResponse("Device health retrieved successfully", health))
}

// GetDeviceOrders lists the order slots configured on the device.
func (h *APIHandler) GetDeviceOrders(c echo.Context) error {
	orders, err := h.deviceClient.GetOrders(c.Request().Context())
	if err != nil {
		return err
	}
	data := utils.CreateListResponse(orders, len(orders), nil)
	return c.JSON(http.StatusOK, utils.SuccessResponse("Device orders retrieved successfully", data))
}

// GetDeviceBagTypes lists the bag types registered on the device.
func (h *APIHandler) GetDeviceBagTypes(c echo.Context) error {
	types, err := h.deviceClient.GetBagTypes(c.Request().Context())
	if err != nil {
		return err
	}
	data := utils.CreateListResponse(types, len(types), nil)
	return c.JSON(http.StatusOK, utils.SuccessResponse("Device bag types retrieved successfully", data))
}

// GetDeviceHistory returns the device-resident completion log.
func (h *APIHandler) GetDeviceHistory(c echo.Context) error {
	entries, err := h.deviceClient.GetHistory(c.Request().Context())
	if err != nil {
		return err
	}
	data := utils.CreateListResponse(entries, len(entries), nil)
	return c.JSON(http.StatusOK, utils.SuccessResponse("Device history retrieved successfully", data))
}

// SendRemoteButton forwards a virtual remote button press to the device.
func (h *APIHandler) SendRemoteButton(c echo.Context) error {
	button := c.Param("button")
	if button == "" {
		return utils.NewBadRequestError("button name is required")
	}
	if err := h.deviceClient.SendRemoteButton(c.Request().Context(), button); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Remote button sent", nil))
}

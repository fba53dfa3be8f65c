package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

// ParcelHandler handles HTTP requests for booking and parcel operations.
type ParcelHandler struct {
	service ports.ParcelService
}

func NewParcelHandler(service ports.ParcelService) *ParcelHandler {
	return &ParcelHandler{service: service}
}

// Quote handles POST /v1/parcels/quote — prices a booking without persisting.
//
// @Summary      Quote a booking
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      quoteRequest  true  "Booking fields"
// @Success      200   {object}  quoteResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/parcels/quote [post]
func (h *ParcelHandler) Quote(c echo.Context) error {
	var req quoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.Quote(c.Request().Context(), ports.QuoteInput{
		ParcelName:     req.ParcelName,
		ParcelType:     req.ParcelType,
		WeightKg:       req.WeightKg,
		SenderRegion:   req.SenderRegion,
		ReceiverRegion: req.ReceiverRegion,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, quoteResponse{
		BaseCost:     result.BaseCost,
		ExtraCharges: result.ExtraCharges,
		TotalCost:    result.TotalCost,
		Zone:         result.Zone,
	})
}

// Create handles POST /v1/parcels — books a parcel.
//
// @Summary      Book a parcel
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createParcelRequest  true   "Booking details"
// @Success      201              {object}  createParcelResponse
// @Failure      400              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/parcels [post]
func (h *ParcelHandler) Create(c echo.Context) error {
	var req createParcelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.service.CreateParcel(c.Request().Context(), ports.CreateParcelInput{
		ParcelName:     req.ParcelName,
		ParcelType:     req.ParcelType,
		WeightKg:       req.WeightKg,
		Sender:         toPartyInput(req.Sender),
		Receiver:       toPartyInput(req.Receiver),
		CreatedBy:      email,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, createParcelResponse{
		TrackingID:       result.TrackingID,
		ParcelStatus:     result.ParcelStatus,
		DeliveryStatus:   result.DeliveryStatus,
		PaymentStatus:    result.PaymentStatus,
		DeliveryCost:     result.DeliveryCost,
		Zone:             result.Zone,
		CreatedAt:        result.CreatedAt,
		ExpectedDelivery: result.ExpectedDelivery,
		Links:            parcelSelfLinks(result.TrackingID),
	})
}

// Get handles GET /v1/parcels/:tracking_id.
//
// @Summary      Get a parcel by tracking id
// @Tags         parcels
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_id  path      string  true  "Tracking id (e.g. ZAP-12345678)"
// @Success      200          {object}  parcelDetailResponse
// @Failure      403          {object}  errorResponse
// @Failure      404          {object}  errorResponse
// @Router       /v1/parcels/{tracking_id} [get]
func (h *ParcelHandler) Get(c echo.Context) error {
	role, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	parcel, err := h.service.GetParcel(c.Request().Context(), ports.GetParcelInput{
		TrackingID: c.Param("tracking_id"),
		Role:       role,
		Email:      email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toParcelDetail(parcel))
}

// List handles GET /v1/parcels — paged, filterable listing.
//
// @Summary      List parcels
// @Tags         parcels
// @Produce      json
// @Security     BearerAuth
// @Param        parcel_status    query     string  false  "Filter by parcel status"
// @Param        payment_status   query     string  false  "Filter by payment status"
// @Param        delivery_status  query     string  false  "Filter by delivery status"
// @Param        search           query     string  false  "Partial match on tracking id or parcel name"
// @Param        page             query     int     false  "Page number (1-based)"
// @Param        limit            query     int     false  "Page size (max 100)"
// @Success      200              {object}  listParcelsResponse
// @Router       /v1/parcels [get]
func (h *ParcelHandler) List(c echo.Context) error {
	role, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListParcels(c.Request().Context(), ports.ListParcelsInput{
		Role:           role,
		Email:          email,
		ParcelStatus:   c.QueryParam("parcel_status"),
		PaymentStatus:  c.QueryParam("payment_status"),
		DeliveryStatus: c.QueryParam("delivery_status"),
		Search:         c.QueryParam("search"),
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		return err
	}

	items := make([]parcelSummaryResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, toParcelSummary(p))
	}
	return c.JSON(http.StatusOK, listParcelsResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Delete handles DELETE /v1/parcels/:tracking_id — owner-only, unpaid-only.
//
// @Summary      Delete an unpaid booking
// @Tags         parcels
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_id  path      string  true  "Tracking id"
// @Success      200          {object}  parcelDetailResponse
// @Failure      404          {object}  errorResponse
// @Failure      409          {object}  errorResponse
// @Router       /v1/parcels/{tracking_id} [delete]
func (h *ParcelHandler) Delete(c echo.Context) error {
	_, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	parcel, err := h.service.DeleteParcel(c.Request().Context(), c.Param("tracking_id"), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toParcelDetail(parcel))
}

// Track handles GET /v1/parcels/:tracking_id/track — public tracking view.
//
// @Summary      Track a parcel
// @Tags         parcels
// @Produce      json
// @Param        tracking_id  path      string  true  "Tracking id"
// @Success      200          {object}  trackParcelResponse
// @Failure      404          {object}  errorResponse
// @Router       /v1/parcels/{tracking_id}/track [get]
func (h *ParcelHandler) Track(c echo.Context) error {
	result, err := h.service.Track(c.Request().Context(), c.Param("tracking_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trackParcelResponse{
		TrackingID:       result.TrackingID,
		ParcelStatus:     result.ParcelStatus,
		DeliveryStatus:   result.DeliveryStatus,
		ExpectedDelivery: result.ExpectedDelivery,
		History:          toHistoryResponse(result.History),
	})
}

// Assign handles PATCH /v1/parcels/:tracking_id/assign — admin attaches a rider.
//
// @Summary      Assign a rider to a parcel
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_id  path      string              true  "Tracking id"
// @Param        body         body      assignRiderRequest  true  "Rider to assign"
// @Success      200          {object}  map[string]string
// @Failure      404          {object}  errorResponse
// @Failure      422          {object}  errorResponse
// @Router       /v1/parcels/{tracking_id}/assign [patch]
func (h *ParcelHandler) Assign(c echo.Context) error {
	var req assignRiderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.service.AssignRider(c.Request().Context(), c.Param("tracking_id"), req.RiderID, email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "rider assigned"})
}

// UpdateStatus handles PATCH /v1/parcels/:tracking_id/status — the assigned
// rider reports a courier-handoff transition.
//
// @Summary      Update delivery status
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_id  path      string                       true  "Tracking id"
// @Param        body         body      updateDeliveryStatusRequest  true  "New delivery status"
// @Success      200          {object}  map[string]string
// @Failure      403          {object}  errorResponse
// @Failure      422          {object}  errorResponse
// @Router       /v1/parcels/{tracking_id}/status [patch]
func (h *ParcelHandler) UpdateStatus(c echo.Context) error {
	var req updateDeliveryStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.service.UpdateDeliveryStatus(c.Request().Context(), c.Param("tracking_id"), domain.DeliveryStatus(req.Status), email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "status updated"})
}

// Deliveries handles GET /v1/rider/deliveries — the rider's worklist.
//
// @Summary      List the rider's deliveries
// @Tags         parcels
// @Produce      json
// @Security     BearerAuth
// @Param        state  query     string  false  "pending (default) or completed"
// @Success      200    {array}   parcelSummaryResponse
// @Router       /v1/rider/deliveries [get]
func (h *ParcelHandler) Deliveries(c echo.Context) error {
	_, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	parcels, err := h.service.RiderDeliveries(c.Request().Context(), ports.RiderDeliveriesInput{
		RiderEmail: email,
		State:      c.QueryParam("state"),
	})
	if err != nil {
		return err
	}

	items := make([]parcelSummaryResponse, 0, len(parcels))
	for _, p := range parcels {
		items = append(items, toParcelSummary(p))
	}
	return c.JSON(http.StatusOK, items)
}

func toPartyInput(r partyRequest) ports.PartyInput {
	return ports.PartyInput{
		Name:        r.Name,
		Contact:     r.Contact,
		Region:      r.Region,
		District:    r.District,
		Warehouse:   r.Warehouse,
		Address:     r.Address,
		Instruction: r.Instruction,
	}
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

// RiderHandler covers the rider application lifecycle.
type RiderHandler struct {
	service ports.RiderService
}

func NewRiderHandler(service ports.RiderService) *RiderHandler {
	return &RiderHandler{service: service}
}

type applyRiderRequest struct {
	Name             string `json:"name"              validate:"required"`
	Phone            string `json:"phone"             validate:"required"`
	Age              int    `json:"age"               validate:"omitempty,gte=18"`
	NationalID       string `json:"national_id"`
	Region           string `json:"region"            validate:"required"`
	District         string `json:"district"          validate:"required"`
	BikeBrand        string `json:"bike_brand"`
	BikeRegistration string `json:"bike_registration"`
}

type decideRiderRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected deactivated"`
}

// Apply handles POST /v1/riders — an authenticated user files a rider
// application under their own email.
//
// @Summary      Apply to become a rider
// @Tags         riders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      applyRiderRequest  true  "Application details"
// @Success      201   {object}  domain.Rider
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/riders [post]
func (h *RiderHandler) Apply(c echo.Context) error {
	var req applyRiderRequest
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

	rider, err := h.service.Apply(c.Request().Context(), ports.ApplyRiderInput{
		Name:             req.Name,
		Email:            email,
		Phone:            req.Phone,
		Age:              req.Age,
		NationalID:       req.NationalID,
		Region:           req.Region,
		District:         req.District,
		BikeBrand:        req.BikeBrand,
		BikeRegistration: req.BikeRegistration,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rider)
}

// List handles GET /v1/riders — admin review queue, filterable by status and
// district.
//
// @Summary      List rider applications
// @Tags         riders
// @Produce      json
// @Security     BearerAuth
// @Param        status    query    string  false  "Filter by application status"
// @Param        district  query    string  false  "Filter by district"
// @Success      200       {array}  domain.Rider
// @Router       /v1/riders [get]
func (h *RiderHandler) List(c echo.Context) error {
	riders, err := h.service.ListRiders(c.Request().Context(), c.QueryParam("status"), c.QueryParam("district"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, riders)
}

// Decide handles PATCH /v1/riders/:id/status — admin approves, rejects, or
// deactivates an application.
//
// @Summary      Decide a rider application
// @Tags         riders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Rider id"
// @Param        body  body      decideRiderRequest  true  "Decision"
// @Success      200   {object}  domain.Rider
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/riders/{id}/status [patch]
func (h *RiderHandler) Decide(c echo.Context) error {
	var req decideRiderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	rider, err := h.service.Decide(c.Request().Context(), c.Param("id"), domain.RiderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rider)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zapshift/parcel-system/internal/core/directory"
)

// DirectoryHandler serves the static coverage dataset backing the booking
// form's cascading selects. All endpoints are public.
type DirectoryHandler struct {
	dir *directory.Directory
}

func NewDirectoryHandler(dir *directory.Directory) *DirectoryHandler {
	return &DirectoryHandler{dir: dir}
}

// Regions handles GET /v1/directory/regions.
//
// @Summary      List service regions
// @Tags         directory
// @Produce      json
// @Success      200  {array}  string
// @Router       /v1/directory/regions [get]
func (h *DirectoryHandler) Regions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dir.Regions())
}

// Districts handles GET /v1/directory/regions/:region/districts.
//
// @Summary      List districts in a region
// @Tags         directory
// @Produce      json
// @Param        region  path     string  true  "Region name"
// @Success      200     {array}  string
// @Failure      404     {object} errorResponse
// @Router       /v1/directory/regions/{region}/districts [get]
func (h *DirectoryHandler) Districts(c echo.Context) error {
	region := c.Param("region")
	if !h.dir.HasRegion(region) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown region")
	}
	return c.JSON(http.StatusOK, h.dir.Districts(region))
}

// Warehouses handles GET /v1/directory/regions/:region/districts/:district/warehouses.
//
// @Summary      List warehouse areas covered by a district
// @Tags         directory
// @Produce      json
// @Param        region    path     string  true  "Region name"
// @Param        district  path     string  true  "District name"
// @Success      200       {array}  string
// @Failure      404       {object} errorResponse
// @Router       /v1/directory/regions/{region}/districts/{district}/warehouses [get]
func (h *DirectoryHandler) Warehouses(c echo.Context) error {
	region := c.Param("region")
	if !h.dir.HasRegion(region) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown region")
	}

	warehouses := h.dir.Warehouses(region, c.Param("district"))
	if len(warehouses) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "unknown district")
	}
	return c.JSON(http.StatusOK, warehouses)
}

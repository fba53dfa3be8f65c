package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

// UserHandler exposes admin user management and the role lookup endpoint.
type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin rider"`
}

type roleResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// List returns all registered users. Admin only.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.User
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Search finds users by partial email match. Admin only.
//
// @Summary      Search users by email
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  query    string  true  "Email fragment"
// @Success      200    {array}  domain.User
// @Router       /v1/users/search [get]
func (h *UserHandler) Search(c echo.Context) error {
	fragment := c.QueryParam("email")
	if fragment == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email query parameter is required")
	}

	users, err := h.authService.SearchUsers(c.Request().Context(), fragment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateRole changes a user's access tier. Admin only.
//
// @Summary      Update a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  domain.User
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.authService.UpdateRole(c.Request().Context(), c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Role resolves the access tier for an email. Callers may ask about themselves;
// only admins may ask about others.
//
// @Summary      Resolve a user's role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Account email"
// @Success      200    {object}  roleResponse
// @Failure      403    {object}  errorResponse
// @Router       /v1/users/{email}/role [get]
func (h *UserHandler) Role(c echo.Context) error {
	role, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	target := c.Param("email")
	if target != email && role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	resolved, err := h.authService.Role(c.Request().Context(), target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleResponse{Email: target, Role: resolved})
}

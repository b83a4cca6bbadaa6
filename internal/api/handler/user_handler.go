package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chatwire/chat-system/internal/core/ports"
)

// UserHandler serves the admin-only full account listing.
type UserHandler struct {
	users ports.UserRepository
}

func NewUserHandler(users ports.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /users. Guarded by the RBAC middleware; returns every
// account including email addresses, which the regular candidate listing
// intentionally omits from reach of non-admins.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.FindAllExcept(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Message: "List of users received successfully!", Result: users})
}

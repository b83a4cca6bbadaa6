package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// envelope is the success payload shape for mutating endpoints: a short
// human-readable confirmation plus an optional result document.
type envelope struct {
	Message string `json:"message"`
	Result  any    `json:"result,omitempty"`
}

// ctxUserID extracts the authenticated user id injected by the Auth
// middleware and fast-fails before any service call when it is missing.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}

// requireSelf confirms a user id supplied on the wire matches the
// authenticated identity. The chat routes carry ids in the path or body for
// compatibility with the web client; they may not impersonate anyone else.
// An empty wire id falls back to the token identity.
func requireSelf(c echo.Context, wireID string) (string, error) {
	userID, err := ctxUserID(c)
	if err != nil {
		return "", err
	}
	if wireID != "" && wireID != userID {
		return "", echo.NewHTTPError(http.StatusForbidden, "cannot act on behalf of another user")
	}
	return userID, nil
}

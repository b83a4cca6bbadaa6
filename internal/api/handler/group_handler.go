package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chatwire/chat-system/internal/api/metrics"
	"github.com/chatwire/chat-system/internal/core/ports"
)

// GroupHandler handles HTTP requests for the group lifecycle.
type GroupHandler struct {
	service ports.GroupService
}

func NewGroupHandler(service ports.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

// Create handles POST /group/create.
func (h *GroupHandler) Create(c echo.Context) error {
	var req createGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	creatorID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	group, err := h.service.Create(c.Request().Context(), creatorID, req.GroupName, req.Members)
	if err != nil {
		return err
	}

	metrics.GroupsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, envelope{Message: "Group created successfully!", Result: group})
}

// AddUsers handles POST /group/addUser.
func (h *GroupHandler) AddUsers(c echo.Context) error {
	var req addUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	result, err := h.service.AddMembers(c.Request().Context(), requesterID, req.GroupID, req.Members)
	if err != nil {
		return err
	}

	// Zero additions is a success, the client renders it differently.
	if result.Added == 0 {
		return c.JSON(http.StatusOK, envelope{
			Message: "Nothing to add, all listed users are already members.",
			Result:  addUserResponse{Added: 0, Group: result.Group},
		})
	}

	return c.JSON(http.StatusOK, envelope{
		Message: "User added to group successfully!",
		Result:  addUserResponse{Added: result.Added, Group: result.Group},
	})
}

// RemoveUser handles POST /group/removeUser.
func (h *GroupHandler) RemoveUser(c echo.Context) error {
	var req removeUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	group, err := h.service.RemoveMember(c.Request().Context(), requesterID, req.GroupID, req.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{Message: "User removed from group successfully!", Result: group})
}

// Leave handles DELETE /group/:groupId — self-service removal.
func (h *GroupHandler) Leave(c echo.Context) error {
	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	group, groupName, err := h.service.Leave(c.Request().Context(), requesterID, c.Param("groupId"))
	if err != nil {
		return err
	}
	if group == nil {
		metrics.GroupsDeletedTotal.WithLabelValues("drained").Inc()
	}

	return c.JSON(http.StatusOK, envelope{Message: fmt.Sprintf("You have left the group %q.", groupName)})
}

// Delete handles DELETE /group/delete/:groupId.
func (h *GroupHandler) Delete(c echo.Context) error {
	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), requesterID, c.Param("groupId")); err != nil {
		return err
	}

	metrics.GroupsDeletedTotal.WithLabelValues("explicit").Inc()
	return c.JSON(http.StatusOK, envelope{Message: "Group deleted successfully!"})
}

// UserList handles GET /group/user-list[?groupId=]: the invite candidate pool
// for a group, or every other user when no group is given.
func (h *GroupHandler) UserList(c echo.Context) error {
	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	users, err := h.service.ListCandidates(c.Request().Context(), requesterID, c.QueryParam("groupId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{Message: "List of users received successfully!", Result: users})
}

package handler

import (
	"net/http"
	"strconv"

	"invoicer/internal/service"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/api/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.PUT("/:id/read", h.MarkAsRead)
		notifications.DELETE("/:id", h.DeleteNotification)
	}
}

// ListNotifications returns a user's notifications, oldest first
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Param        userId      query     int   false  "User ID (default 1)"
// @Param        unreadOnly  query     bool  false  "Only unread notifications"
// @Success      200         {object}  response.Response{data=[]service.NotificationResponse}
// @Failure      400         {object}  response.Response
// @Router       /api/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, err := queryUint(c, "userId", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.Query("unreadOnly"))

	list, err := h.notificationService.ListNotifications(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}

// MarkAsRead flags a notification as read
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if err := h.notificationService.MarkAsRead(c.Request.Context(), c.Param("id")); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Notification marked as read", nil))
}

// DeleteNotification removes a notification
// @Summary      Delete notification
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	if err := h.notificationService.DeleteNotification(c.Request.Context(), c.Param("id")); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Notification deleted", nil))
}

package handler

import (
	"net/http"
	"time"

	"invoicer/internal/service"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

var openRangeEnd = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

type TimeEntryHandler struct {
	timesheetService service.TimesheetService
}

func NewTimeEntryHandler(timesheetService service.TimesheetService) *TimeEntryHandler {
	return &TimeEntryHandler{timesheetService: timesheetService}
}

func (h *TimeEntryHandler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/api/time-entries")
	{
		entries.GET("", h.ListEntries)
		entries.POST("", h.CreateEntry)
		entries.GET("/:id", h.GetEntry)
		entries.PUT("/:id", h.UpdateEntry)
		entries.DELETE("/:id", h.DeleteEntry)
	}
}

// ListEntries returns a project's time entries, oldest first
// @Summary      List time entries
// @Tags         time-entries
// @Produce      json
// @Param        projectId  query     int     false  "Project ID (default 1)"
// @Param        startDate  query     string  false  "Earliest start YYYY-MM-DD"
// @Param        endDate    query     string  false  "Latest start YYYY-MM-DD, inclusive"
// @Success      200        {object}  response.Response{data=[]service.TimeEntryResponse}
// @Failure      400        {object}  response.Response
// @Router       /api/time-entries [get]
func (h *TimeEntryHandler) ListEntries(c *gin.Context) {
	projectID, err := queryUint(c, "projectId", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	start, err := queryDate(c, "startDate", time.Time{}, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	end, err := queryDate(c, "endDate", openRangeEnd, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	entries, err := h.timesheetService.ListEntries(c.Request.Context(), projectID, start, end)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// GetEntry returns one time entry
// @Summary      Get time entry
// @Tags         time-entries
// @Produce      json
// @Param        id   path      int  true  "Time entry ID"
// @Success      200  {object}  response.Response{data=service.TimeEntryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/time-entries/{id} [get]
func (h *TimeEntryHandler) GetEntry(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	entry, err := h.timesheetService.GetEntry(c.Request.Context(), id)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// CreateEntry records worked time
// @Summary      Create time entry
// @Tags         time-entries
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TimeEntryRequest  true  "Time Entry Payload"
// @Success      201      {object}  response.Response{data=service.TimeEntryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/time-entries [post]
func (h *TimeEntryHandler) CreateEntry(c *gin.Context) {
	var req service.TimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	entry, err := h.timesheetService.CreateEntry(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// UpdateEntry replaces a time entry
// @Summary      Update time entry
// @Tags         time-entries
// @Accept       json
// @Produce      json
// @Param        id       path      int                       true  "Time entry ID"
// @Param        payload  body      service.TimeEntryRequest  true  "Time Entry Payload"
// @Success      200      {object}  response.Response{data=service.TimeEntryResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/time-entries/{id} [put]
func (h *TimeEntryHandler) UpdateEntry(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	var req service.TimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	entry, err := h.timesheetService.UpdateEntry(c.Request.Context(), id, req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// DeleteEntry removes a time entry
// @Summary      Delete time entry
// @Tags         time-entries
// @Produce      json
// @Param        id   path      int  true  "Time entry ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/time-entries/{id} [delete]
func (h *TimeEntryHandler) DeleteEntry(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	if err := h.timesheetService.DeleteEntry(c.Request.Context(), id); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Time entry deleted", nil))
}

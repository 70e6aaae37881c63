package scheduling

import (
	"errors"
	"net/http"
	"strconv"

	"homologacao/internal/domain"
	"homologacao/internal/middleware"
	"homologacao/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	availability *Availability
	coordinator  *Coordinator
}

func NewHandler(availability *Availability, coordinator *Coordinator) *Handler {
	return &Handler{availability: availability, coordinator: coordinator}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/slots", middleware.RequireCapability(domain.ActionListSlots), h.ListSlots)

	rg.GET("/bookings/:id", middleware.RequireCapability(domain.ActionListCases), h.GetBooking)
	rg.GET("/bookings/:id/available-responsibles", middleware.RequireCapability(domain.ActionManageBooking), h.AvailableResponsibles)
	rg.POST("/bookings/:id/reassign", middleware.RequireCapability(domain.ActionManageBooking), h.Reassign)
	rg.PATCH("/bookings/:id/meeting-link", middleware.RequireCapability(domain.ActionManageBooking), h.SetMeetingLink)

	rg.POST("/unions/:id/capacity-windows", middleware.RequireCapability(domain.ActionManageCapacity), h.CreateWindow)
	rg.GET("/unions/:id/capacity-windows", middleware.RequireCapability(domain.ActionManageCapacity), h.ListWindows)
	rg.DELETE("/unions/:id/capacity-windows/:windowId", middleware.RequireCapability(domain.ActionManageCapacity), h.DeleteWindow)
}

func (h *Handler) ListSlots(c *gin.Context) {
	unionID, err := strconv.ParseInt(c.Query("union_id"), 10, 64)
	if err != nil || unionID == 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "union_id is required")
		return
	}
	date := c.Query("date")

	slots, err := h.availability.ListSlots(c.Request.Context(), unionID, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slots": slots})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	b, err := h.coordinator.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) AvailableResponsibles(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	users, err := h.coordinator.AvailableResponsibles(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"responsibles": users})
}

type reassignBody struct {
	ResponsibleID int64 `json:"responsible_id" binding:"required"`
}

func (h *Handler) Reassign(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var body reassignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.coordinator.Reassign(c.Request.Context(), id, body.ResponsibleID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

type meetingLinkBody struct {
	MeetingLink string `json:"meeting_link" binding:"required"`
}

func (h *Handler) SetMeetingLink(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var body meetingLinkBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.coordinator.SetMeetingLink(c.Request.Context(), id, body.MeetingLink)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

type windowBody struct {
	ResponsibleID   int64  `json:"responsible_id" binding:"required"`
	Weekday         int    `json:"weekday"`
	StartTime       string `json:"start_time" binding:"required"`
	EndTime         string `json:"end_time" binding:"required"`
	BreakStart      string `json:"break_start"`
	BreakEnd        string `json:"break_end"`
	SlotDurationMin int    `json:"slot_duration_minutes" binding:"required"`
}

func (h *Handler) CreateWindow(c *gin.Context) {
	unionID, ok := h.unionScope(c)
	if !ok {
		return
	}

	var body windowBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	w := &domain.CapacityWindow{
		UnionID:         unionID,
		ResponsibleID:   body.ResponsibleID,
		Weekday:         body.Weekday,
		StartTime:       body.StartTime,
		EndTime:         body.EndTime,
		BreakStart:      body.BreakStart,
		BreakEnd:        body.BreakEnd,
		SlotDurationMin: body.SlotDurationMin,
	}
	if err := h.availability.CreateWindow(c.Request.Context(), w); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"capacity_window": w})
}

func (h *Handler) ListWindows(c *gin.Context) {
	unionID, ok := h.unionScope(c)
	if !ok {
		return
	}
	windows, err := h.availability.ListWindows(c.Request.Context(), unionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"capacity_windows": windows})
}

func (h *Handler) DeleteWindow(c *gin.Context) {
	unionID, ok := h.unionScope(c)
	if !ok {
		return
	}
	windowID, err := strconv.ParseInt(c.Param("windowId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid window ID")
		return
	}
	if err := h.availability.DeleteWindow(c.Request.Context(), unionID, windowID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// unionScope parses the union id and makes sure union users only touch
// their own union.
func (h *Handler) unionScope(c *gin.Context) (int64, bool) {
	unionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid union ID")
		return 0, false
	}
	if c.GetString("role") == string(domain.RoleUnion) && c.GetInt64("union_id") != unionID {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: another union")
		return 0, false
	}
	return unionID, true
}

func (h *Handler) bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSlotUnavailable):
		response.Error(c, http.StatusConflict, "SLOT_UNAVAILABLE", "Chosen slot is no longer available, re-query the slot list")
	case errors.Is(err, ErrUnavailableResponsible):
		response.Error(c, http.StatusConflict, "UNAVAILABLE_RESPONSIBLE", "The chosen responsible is not available for this time range")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking or window not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected failure")
	}
}

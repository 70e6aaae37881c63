package cases

import (
	"errors"
	"net/http"
	"strconv"

	"homologacao/internal/domain"
	"homologacao/internal/middleware"
	"homologacao/internal/modules/scheduling"
	"homologacao/internal/modules/signatures"
	"homologacao/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cases", middleware.RequireCapability(domain.ActionCreateCase), h.CreateCase)
	rg.GET("/cases", middleware.RequireCapability(domain.ActionListCases), h.ListCases)
	rg.GET("/cases/:id", middleware.RequireCapability(domain.ActionListCases), h.GetCase)
	rg.POST("/cases/:id/accept", middleware.RequireCapability(domain.ActionAcceptCase), h.AcceptCase)
	rg.POST("/cases/:id/book", middleware.RequireCapability(domain.ActionBookSlot), h.BookCase)
	rg.POST("/cases/:id/cancel-booking", middleware.RequireCapability(domain.ActionManageBooking), h.CancelBooking)
	rg.POST("/cases/:id/meeting/start", middleware.RequireCapability(domain.ActionManageMeeting), h.StartMeeting)
	rg.POST("/cases/:id/meeting/finish", middleware.RequireCapability(domain.ActionManageMeeting), h.FinishMeeting)
	rg.POST("/cases/:id/sign", middleware.RequireCapability(domain.ActionSign), h.SignCase)
	rg.POST("/cases/:id/finalize-check", middleware.RequireCapability(domain.ActionFinalizeCheck), h.FinalizeCheck)
	rg.PATCH("/cases/:id/remarks", middleware.RequireCapability(domain.ActionUpdateRemarks), h.UpdateRemarks)
}

func (h *Handler) CreateCase(c *gin.Context) {
	var body CreateCaseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	companyID := c.GetInt64("company_id")
	if companyID == 0 {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Caller has no company attached")
		return
	}

	created, err := h.service.Create(c.Request.Context(), CreateCaseRequest{
		EmployeeName:      body.EmployeeName,
		EmployeeRole:      body.EmployeeRole,
		CompanyID:         companyID,
		UnionID:           body.UnionID,
		TerminationReason: body.TerminationReason,
		RequiredTypes:     toDocumentTypes(body.RequiredTypes),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"case": created})
}

func (h *Handler) ListCases(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	status := domain.CaseStatus(c.Query("status"))

	list, err := h.service.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cases": list})
}

func (h *Handler) GetCase(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	cs, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"case": cs})
}

func (h *Handler) AcceptCase(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	cs, err := h.service.Accept(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"case": cs})
}

func (h *Handler) BookCase(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}

	var body BookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	b, err := h.service.Book(c.Request.Context(), id, scheduling.SlotRequest{
		ResponsibleID: body.ResponsibleID,
		Start:         body.Start,
		End:           body.End,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	cs, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"case": cs})
}

func (h *Handler) StartMeeting(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	cs, err := h.service.StartMeeting(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"case": cs})
}

func (h *Handler) FinishMeeting(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	cs, err := h.service.FinishMeeting(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"case": cs})
}

func (h *Handler) SignCase(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}

	var body SignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sig, err := h.service.Sign(c.Request.Context(), id, SignRequest{
		Party:      domain.Party(body.Party),
		Confirmed:  body.Confirmed,
		ArtifactID: body.ArtifactID,
		SignedBy:   c.GetInt64("user_id"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"signature": sig})
}

func (h *Handler) FinalizeCheck(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	cs, err := h.service.FinalizeCheck(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"case": cs})
}

func (h *Handler) UpdateRemarks(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}

	var body RemarksBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cs, err := h.service.UpdateRemarks(c.Request.Context(), id, body.Remarks)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"case": cs})
}

func (h *Handler) caseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid case ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	var te *TransitionError
	switch {
	case errors.As(err, &te):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", te.Error())
	case errors.Is(err, ErrCaseClosed):
		response.Error(c, http.StatusConflict, "CASE_CLOSED", "Case is finalized and can no longer be changed")
	case errors.Is(err, ErrConcurrentModification):
		response.Error(c, http.StatusConflict, "CONCURRENT_MODIFICATION", "Case was changed by someone else, re-fetch and retry")
	case errors.Is(err, signatures.ErrAlreadySigned):
		response.Error(c, http.StatusConflict, "ALREADY_SIGNED", "This party has already signed the case")
	case errors.Is(err, scheduling.ErrSlotUnavailable):
		response.Error(c, http.StatusConflict, "SLOT_UNAVAILABLE", "Chosen slot is no longer available, re-query the slot list")
	case errors.Is(err, scheduling.ErrValidation), errors.Is(err, signatures.ErrValidation), errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, scheduling.ErrNotFound), errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Case not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected failure")
	}
}

package documents

import (
	"errors"
	"net/http"
	"strconv"

	"homologacao/internal/domain"
	"homologacao/internal/middleware"
	"homologacao/internal/modules/cases"
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
	rg.POST("/cases/:id/documents", middleware.RequireCapability(domain.ActionUploadDocument), h.Upload)
	rg.GET("/cases/:id/documents", middleware.RequireCapability(domain.ActionListCases), h.ListByCase)
	rg.POST("/documents/:id/approve", middleware.RequireCapability(domain.ActionReviewDocument), h.Approve)
	rg.POST("/documents/:id/reject", middleware.RequireCapability(domain.ActionReviewDocument), h.Reject)
}

func (h *Handler) Upload(c *gin.Context) {
	caseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid case ID")
		return
	}

	docType := domain.DocumentType(c.PostForm("type"))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing file")
		return
	}

	d, err := h.service.Upload(c.Request.Context(), caseID, docType, fileHeader)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"document": d})
}

func (h *Handler) ListByCase(c *gin.Context) {
	caseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid case ID")
		return
	}

	docs, err := h.service.ListByCase(c.Request.Context(), caseID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) Approve(c *gin.Context) {
	d, err := h.service.Approve(c.Request.Context(), c.Param("id"), c.GetInt64("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"document": d})
}

type rejectBody struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) Reject(c *gin.Context) {
	var body rejectBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Rejection reason is required", err.Error())
		return
	}

	d, err := h.service.Reject(c.Request.Context(), c.Param("id"), body.Reason, c.GetInt64("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"document": d})
}

func (h *Handler) fail(c *gin.Context, err error) {
	var te *cases.TransitionError
	switch {
	case errors.Is(err, ErrDocumentLocked):
		response.Error(c, http.StatusConflict, "DOCUMENT_LOCKED", "A pending or approved document of this type already exists")
	case errors.As(err, &te):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", te.Error())
	case errors.Is(err, cases.ErrCaseClosed):
		response.Error(c, http.StatusConflict, "CASE_CLOSED", "Case is finalized and can no longer be changed")
	case errors.Is(err, cases.ErrConcurrentModification):
		response.Error(c, http.StatusConflict, "CONCURRENT_MODIFICATION", "Case was changed by someone else, re-fetch and retry")
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "File exceeds the maximum allowed size")
	case errors.Is(err, ErrInvalidMimeType):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "File type is not allowed")
	case errors.Is(err, ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "File is empty")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, ErrNotFound), errors.Is(err, cases.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Document or case not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected failure")
	}
}

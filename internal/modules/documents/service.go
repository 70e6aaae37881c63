package documents

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"homologacao/internal/domain"
	"homologacao/internal/modules/cases"
	"homologacao/internal/repository"

	"github.com/google/uuid"
)

const MaxFileSize = 20 * 1024 * 1024 // 20 MB

var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

type DocumentRepository interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetCurrentByCaseAndType(ctx context.Context, caseID int64, t domain.DocumentType) (*domain.Document, error)
	ListByCase(ctx context.Context, caseID int64) ([]domain.Document, error)
	SetReview(ctx context.Context, id string, status domain.DocumentStatus, reason string, reviewerID int64, from ...domain.DocumentStatus) error
}

// CaseDirectory is the slice of the state machine this module needs:
// reading a case and asking it to re-derive its documentation status.
type CaseDirectory interface {
	Get(ctx context.Context, id int64) (*domain.Case, error)
	RecalculateDocuments(ctx context.Context, caseID int64) (*domain.Case, error)
}

// Service tracks per-document review status and aggregates it into case
// readiness. Every mutation ends with the state machine re-deriving the
// case status.
type Service struct {
	documents DocumentRepository
	dir       CaseDirectory
	blobs     BlobStore
}

func NewService(documents DocumentRepository, dir CaseDirectory, blobs BlobStore) *Service {
	return &Service{documents: documents, dir: dir, blobs: blobs}
}

var uploadableStatuses = map[domain.CaseStatus]bool{
	domain.CasePendingDocumentation:  true,
	domain.CaseUnderReview:           true,
	domain.CaseDocumentationRejected: true,
}

var reviewableStatuses = map[domain.CaseStatus]bool{
	domain.CasePendingDocumentation:  true,
	domain.CaseUnderReview:           true,
	domain.CaseDocumentationRejected: true,
	domain.CaseAwaitingScheduling:    true,
}

// Upload stores a new document of the given type. A pending or approved
// document of the same type locks the slot; a rejected one is replaced
// by a fresh pending row.
func (s *Service) Upload(ctx context.Context, caseID int64, docType domain.DocumentType, fileHeader *multipart.FileHeader) (*domain.Document, error) {
	if !domain.ValidDocumentType(docType) {
		return nil, ErrValidation
	}

	c, err := s.dir.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseFinalized {
		return nil, cases.ErrCaseClosed
	}
	if !uploadableStatuses[c.Status] {
		return nil, &cases.TransitionError{
			CaseID: c.ID,
			Status: c.Status,
			Action: "upload_document",
			Reason: "documents can only be uploaded while the case collects documentation",
		}
	}

	_, err = s.documents.GetCurrentByCaseAndType(ctx, caseID, docType)
	if err == nil {
		return nil, ErrDocumentLocked
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// sniff the MIME type from the first 512 bytes
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !allowedMimeTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}
	if seeker, ok := file.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}

	blobID := uuid.New().String()
	if err := s.blobs.Save(ctx, blobID, file); err != nil {
		return nil, err
	}

	d := &domain.Document{
		ID:           uuid.New().String(),
		CaseID:       caseID,
		Type:         docType,
		Status:       domain.DocumentPending,
		BlobID:       blobID,
		OriginalName: fileHeader.Filename,
		MimeType:     mimeType,
		Size:         fileHeader.Size,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.documents.Create(ctx, d); err != nil {
		return nil, err
	}

	if _, err := s.dir.RecalculateDocuments(ctx, caseID); err != nil {
		return nil, err
	}
	return d, nil
}

// Approve marks a pending document approved. When that completes the
// required set the state machine advances the case.
func (s *Service) Approve(ctx context.Context, documentID string, reviewerID int64) (*domain.Document, error) {
	d, err := s.loadForReview(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.DocumentPending {
		return nil, ErrValidation
	}

	// the conditional write catches a racing reviewer between our read
	// and here
	if err := s.documents.SetReview(ctx, d.ID, domain.DocumentApproved, "", reviewerID, domain.DocumentPending); err != nil {
		return nil, reviewErr(err)
	}
	if _, err := s.dir.RecalculateDocuments(ctx, d.CaseID); err != nil {
		return nil, err
	}
	return s.documents.GetByID(ctx, d.ID)
}

// Reject requires a non-empty reason. A previously approved document may
// be rejected too, which pulls the case back out of awaiting_scheduling.
func (s *Service) Reject(ctx context.Context, documentID string, reason string, reviewerID int64) (*domain.Document, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrValidation
	}

	d, err := s.loadForReview(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if d.Status == domain.DocumentRejected {
		return nil, ErrValidation
	}

	if err := s.documents.SetReview(ctx, d.ID, domain.DocumentRejected, reason, reviewerID, domain.DocumentPending, domain.DocumentApproved); err != nil {
		return nil, reviewErr(err)
	}
	if _, err := s.dir.RecalculateDocuments(ctx, d.CaseID); err != nil {
		return nil, err
	}
	return s.documents.GetByID(ctx, d.ID)
}

// reviewErr maps the repository's conditional-write failures onto the
// errors review callers handle.
func reviewErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrStaleVersion):
		return cases.ErrConcurrentModification
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	}
	return err
}

func (s *Service) loadForReview(ctx context.Context, documentID string) (*domain.Document, error) {
	d, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	c, err := s.dir.Get(ctx, d.CaseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseFinalized {
		return nil, cases.ErrCaseClosed
	}
	if !reviewableStatuses[c.Status] {
		return nil, &cases.TransitionError{
			CaseID: c.ID,
			Status: c.Status,
			Action: "review_document",
			Reason: "documents can no longer be reviewed once the meeting is booked",
		}
	}
	return d, nil
}

func (s *Service) ListByCase(ctx context.Context, caseID int64) ([]domain.Document, error) {
	if _, err := s.dir.Get(ctx, caseID); err != nil {
		return nil, err
	}
	return s.documents.ListByCase(ctx, caseID)
}

package cases

import (
	"context"
	"errors"
	"strings"
	"time"

	"homologacao/internal/domain"
	"homologacao/internal/modules/scheduling"
	"homologacao/internal/repository"
)

// Service is the case state machine. It is the only writer of the cached
// case status; every transition is derived from the recorded facts and
// persisted under an optimistic version check.
type Service struct {
	cases  CaseRepository
	booker Booker
	quorum Quorum
	notifs Notifier
}

func NewService(cases CaseRepository, booker Booker, quorum Quorum, notifs Notifier) *Service {
	return &Service{
		cases:  cases,
		booker: booker,
		quorum: quorum,
		notifs: notifs,
	}
}

type CreateCaseRequest struct {
	EmployeeName      string
	EmployeeRole      string
	CompanyID         int64
	UnionID           int64
	TerminationReason string
	RequiredTypes     []domain.DocumentType
}

func (s *Service) Create(ctx context.Context, req CreateCaseRequest) (*domain.Case, error) {
	if strings.TrimSpace(req.EmployeeName) == "" || req.CompanyID == 0 || req.UnionID == 0 {
		return nil, ErrValidation
	}

	required := req.RequiredTypes
	if len(required) == 0 {
		required = domain.DefaultRequiredTypes()
	}
	for _, t := range required {
		if !domain.ValidDocumentType(t) {
			return nil, ErrValidation
		}
	}

	c := &domain.Case{
		EmployeeName:      req.EmployeeName,
		EmployeeRole:      req.EmployeeRole,
		CompanyID:         req.CompanyID,
		UnionID:           req.UnionID,
		TerminationReason: req.TerminationReason,
		RequiredTypes:     domain.JoinTypes(required),
		Status:            domain.CaseAwaitingApproval,
	}
	if err := s.cases.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, status domain.CaseStatus, limit, offset int) ([]domain.Case, error) {
	return s.cases.List(ctx, status, limit, offset)
}

// Accept moves a freshly submitted case into documentation collection.
func (s *Service) Accept(ctx context.Context, caseID int64) (*domain.Case, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseFinalized {
		return nil, ErrCaseClosed
	}
	if c.Status != domain.CaseAwaitingApproval {
		return nil, transitionErr(c, "accept", "case was already accepted")
	}

	now := time.Now().UTC()
	c.AcceptedAt = &now
	c.Status = domain.CasePendingDocumentation
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		s.notifs.NotifyDocumentsRequested(ctx, c.ID)
	}
	return c, nil
}

// RecalculateDocuments re-derives the documentation-phase status after a
// document event (upload, approve, reject). It is a no-op outside the
// documentation phase and fails once the case is finalized.
func (s *Service) RecalculateDocuments(ctx context.Context, caseID int64) (*domain.Case, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseFinalized {
		return nil, ErrCaseClosed
	}

	switch c.Status {
	case domain.CasePendingDocumentation,
		domain.CaseUnderReview,
		domain.CaseDocumentationRejected,
		domain.CaseDocumentsApproved,
		domain.CaseAwaitingScheduling:
	default:
		return c, nil
	}

	next := deriveDocumentationStatus(c)
	if next == c.Status {
		return c, nil
	}

	c.Status = next
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// deriveDocumentationStatus folds the per-type document facts into one
// case status. A rejected current document wins over a missing type so a
// re-upload of the rejected type lands the case back in
// pending_documentation, matching the review loop.
func deriveDocumentationStatus(c *domain.Case) domain.CaseStatus {
	current := make(map[domain.DocumentType]domain.DocumentStatus)
	for _, d := range c.Documents {
		if d.Status != domain.DocumentRejected {
			current[d.Type] = d.Status
			continue
		}
		if _, ok := current[d.Type]; !ok {
			current[d.Type] = domain.DocumentRejected
		}
	}

	anyRejected := false
	anyMissing := false
	allApproved := true
	for _, t := range c.RequiredTypeList() {
		st, ok := current[t]
		switch {
		case !ok:
			anyMissing = true
			allApproved = false
		case st == domain.DocumentRejected:
			anyRejected = true
			allApproved = false
		case st != domain.DocumentApproved:
			allApproved = false
		}
	}

	switch {
	case anyRejected:
		return domain.CaseDocumentationRejected
	case anyMissing:
		return domain.CasePendingDocumentation
	case allApproved:
		// documents_approved is passed through immediately
		return domain.CaseAwaitingScheduling
	default:
		return domain.CaseUnderReview
	}
}

// Book delegates to the coordinator and, on success, moves the case to
// scheduled. If a concurrent writer bumped the case version meanwhile,
// the fresh booking is released again and the caller retries.
func (s *Service) Book(ctx context.Context, caseID int64, req scheduling.SlotRequest) (*domain.Booking, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseFinalized {
		return nil, ErrCaseClosed
	}
	if c.Status != domain.CaseAwaitingScheduling {
		return nil, transitionErr(c, "book", "documents must be approved and no booking may exist yet")
	}

	b, err := s.booker.Book(ctx, c, req)
	if err != nil {
		return nil, err
	}

	c.Status = domain.CaseScheduled
	if err := s.save(ctx, c); err != nil {
		_ = s.booker.CancelForCase(ctx, c.ID)
		return nil, err
	}

	if s.notifs != nil {
		s.notifs.NotifyCaseScheduled(ctx, c.ID, b)
	}
	return b, nil
}

// CancelBooking releases the active booking and returns the case to
// awaiting_scheduling.
func (s *Service) CancelBooking(ctx context.Context, caseID int64) (*domain.Case, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseFinalized {
		return nil, ErrCaseClosed
	}
	if c.Status != domain.CaseScheduled {
		return nil, transitionErr(c, "cancel_booking", "only a scheduled case can release its booking")
	}

	if err := s.booker.CancelForCase(ctx, c.ID); err != nil {
		return nil, err
	}

	c.Status = domain.CaseAwaitingScheduling
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	c.Booking = nil
	return c, nil
}

func (s *Service) StartMeeting(ctx context.Context, caseID int64) (*domain.Case, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseFinalized {
		return nil, ErrCaseClosed
	}
	if c.Status != domain.CaseScheduled {
		return nil, transitionErr(c, "start_meeting", "case has no pending scheduled meeting")
	}

	now := time.Now().UTC()
	c.MeetingStartedAt = &now
	c.Status = domain.CaseInMeeting
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// FinishMeeting also accepts a scheduled case directly, for callers that
// skip explicit meeting-start tracking.
func (s *Service) FinishMeeting(ctx context.Context, caseID int64) (*domain.Case, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseFinalized {
		return nil, ErrCaseClosed
	}
	if c.Status != domain.CaseScheduled && c.Status != domain.CaseInMeeting {
		return nil, transitionErr(c, "finish_meeting", "meeting was never scheduled")
	}

	now := time.Now().UTC()
	c.MeetingFinishedAt = &now
	c.Status = domain.CasePendingSignature
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

type SignRequest struct {
	Party      domain.Party
	Confirmed  bool
	ArtifactID string
	SignedBy   int64
}

// Sign records one party's evidence and finalizes the case once both
// parties have signed.
func (s *Service) Sign(ctx context.Context, caseID int64, req SignRequest) (*domain.Signature, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseFinalized {
		return nil, ErrCaseClosed
	}
	if c.Status != domain.CasePendingSignature {
		return nil, transitionErr(c, "sign", "meeting must be finished before signing")
	}
	if !domain.ValidParty(req.Party) {
		return nil, ErrValidation
	}
	if !req.Confirmed && req.ArtifactID == "" {
		return nil, ErrValidation
	}

	sig, err := s.quorum.Record(ctx, c.ID, req.Party, req.Confirmed, req.ArtifactID, req.SignedBy)
	if err != nil {
		return nil, err
	}

	complete, err := s.quorum.IsComplete(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if complete {
		c.Status = domain.CaseFinalized
		if err := s.save(ctx, c); err != nil {
			return nil, err
		}
		if s.notifs != nil {
			s.notifs.NotifyCaseFinalized(ctx, c.ID)
		}
	}

	return sig, nil
}

// FinalizeCheck is idempotent: it finalizes a pending_signature case
// whose quorum is complete and is a no-op otherwise.
func (s *Service) FinalizeCheck(ctx context.Context, caseID int64) (*domain.Case, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseFinalized {
		return c, nil
	}
	if c.Status != domain.CasePendingSignature {
		return c, nil
	}

	complete, err := s.quorum.IsComplete(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if !complete {
		return c, nil
	}

	c.Status = domain.CaseFinalized
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	if s.notifs != nil {
		s.notifs.NotifyCaseFinalized(ctx, c.ID)
	}
	return c, nil
}

// UpdateRemarks stores the free-text "ressalvas" captured during or
// after the meeting.
func (s *Service) UpdateRemarks(ctx context.Context, caseID int64, remarks string) (*domain.Case, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseFinalized {
		return nil, ErrCaseClosed
	}
	if c.Status != domain.CaseInMeeting && c.Status != domain.CasePendingSignature {
		return nil, transitionErr(c, "update_remarks", "remarks can only be recorded during or after the meeting")
	}

	c.Remarks = remarks
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, c *domain.Case) error {
	if err := s.cases.SaveVersioned(ctx, c); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return ErrConcurrentModification
		}
		return err
	}
	return nil
}

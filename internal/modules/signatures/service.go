package signatures

import (
	"context"
	"errors"
	"time"

	"homologacao/internal/domain"
	"homologacao/internal/repository"
)

type SignatureRepository interface {
	Create(ctx context.Context, s *domain.Signature) error
	ListByCase(ctx context.Context, caseID int64) ([]domain.Signature, error)
	ExistsByCaseAndParty(ctx context.Context, caseID int64, party domain.Party) (bool, error)
}

// Service keeps the dual-party signature quorum: one immutable signature
// per (case, party), complete when both company and union have signed.
type Service struct {
	signatures SignatureRepository
}

func NewService(signatures SignatureRepository) *Service {
	return &Service{signatures: signatures}
}

func (s *Service) Record(ctx context.Context, caseID int64, party domain.Party, confirmed bool, artifactID string, signedBy int64) (*domain.Signature, error) {
	if !domain.ValidParty(party) {
		return nil, ErrValidation
	}
	if !confirmed && artifactID == "" {
		return nil, ErrValidation
	}

	exists, err := s.signatures.ExistsByCaseAndParty(ctx, caseID, party)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadySigned
	}

	sig := &domain.Signature{
		CaseID:     caseID,
		Party:      party,
		Confirmed:  confirmed,
		ArtifactID: artifactID,
		SignedBy:   signedBy,
		SignedAt:   time.Now().UTC(),
	}
	// the exists check above is a fast path only; the unique
	// (case, party) index decides races between concurrent signers
	if err := s.signatures.Create(ctx, sig); err != nil {
		if errors.Is(err, repository.ErrDuplicateSignature) {
			return nil, ErrAlreadySigned
		}
		return nil, err
	}
	return sig, nil
}

func (s *Service) IsComplete(ctx context.Context, caseID int64) (bool, error) {
	company, err := s.signatures.ExistsByCaseAndParty(ctx, caseID, domain.PartyCompany)
	if err != nil {
		return false, err
	}
	if !company {
		return false, nil
	}
	union, err := s.signatures.ExistsByCaseAndParty(ctx, caseID, domain.PartyUnion)
	if err != nil {
		return false, err
	}
	return union, nil
}

func (s *Service) ListByCase(ctx context.Context, caseID int64) ([]domain.Signature, error) {
	return s.signatures.ListByCase(ctx, caseID)
}

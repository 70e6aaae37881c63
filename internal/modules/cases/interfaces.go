package cases

import (
	"context"

	"homologacao/internal/domain"
	"homologacao/internal/modules/scheduling"
)

type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id int64) (*domain.Case, error)
	List(ctx context.Context, status domain.CaseStatus, limit, offset int) ([]domain.Case, error)
	SaveVersioned(ctx context.Context, c *domain.Case) error
}

// Booker is the scheduling coordinator as seen by the state machine.
type Booker interface {
	Book(ctx context.Context, cs *domain.Case, req scheduling.SlotRequest) (*domain.Booking, error)
	CancelForCase(ctx context.Context, caseID int64) error
}

// Quorum records signing evidence and detects completion.
type Quorum interface {
	Record(ctx context.Context, caseID int64, party domain.Party, confirmed bool, artifactID string, signedBy int64) (*domain.Signature, error)
	IsComplete(ctx context.Context, caseID int64) (bool, error)
}

// Notifier is the outbound-notification collaborator. Delivery is not
// this service's problem; implementations may simply log.
type Notifier interface {
	NotifyDocumentsRequested(ctx context.Context, caseID int64)
	NotifyCaseScheduled(ctx context.Context, caseID int64, b *domain.Booking)
	NotifyCaseFinalized(ctx context.Context, caseID int64)
}

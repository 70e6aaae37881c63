package cases

import (
	"context"
	"log"

	"homologacao/internal/domain"
)

// LogNotifier writes notification intents to the process log. Actual
// delivery (e-mail, meeting-link distribution) lives outside this
// service.
type LogNotifier struct{}

func (LogNotifier) NotifyDocumentsRequested(_ context.Context, caseID int64) {
	log.Printf("notify documents_requested case_id=%d", caseID)
}

func (LogNotifier) NotifyCaseScheduled(_ context.Context, caseID int64, b *domain.Booking) {
	log.Printf("notify case_scheduled case_id=%d booking_id=%d responsible_id=%d start=%s",
		caseID, b.ID, b.ResponsibleID, b.StartTime.Format("2006-01-02 15:04"))
}

func (LogNotifier) NotifyCaseFinalized(_ context.Context, caseID int64) {
	log.Printf("notify case_finalized case_id=%d", caseID)
}

package domain

import (
	"strings"
	"time"
)

type CaseStatus string

const (
	CaseAwaitingApproval      CaseStatus = "awaiting_approval"
	CasePendingDocumentation  CaseStatus = "pending_documentation"
	CaseUnderReview           CaseStatus = "under_review"
	CaseDocumentationRejected CaseStatus = "documentation_rejected"
	CaseDocumentsApproved     CaseStatus = "documents_approved"
	CaseAwaitingScheduling    CaseStatus = "awaiting_scheduling"
	CaseScheduled             CaseStatus = "scheduled"
	CaseInMeeting             CaseStatus = "in_meeting"
	CasePendingSignature      CaseStatus = "pending_signature"
	CaseFinalized             CaseStatus = "finalized"
)

// Case is one dismissal-homologation workflow instance.
// Status is a cache: the state machine keeps it consistent with the
// underlying facts (acceptance, documents, booking, meeting marks,
// signatures) and is the only writer.
type Case struct {
	ID                int64      `json:"id" gorm:"column:id;primaryKey"`
	EmployeeName      string     `json:"employee_name" gorm:"column:employee_name"`
	EmployeeRole      string     `json:"employee_role" gorm:"column:employee_role"`
	CompanyID         int64      `json:"company_id" gorm:"column:company_id"`
	UnionID           int64      `json:"union_id" gorm:"column:union_id"`
	TerminationReason string     `json:"termination_reason" gorm:"column:termination_reason"`
	RequiredTypes     string     `json:"-" gorm:"column:required_types;type:text"`
	Status            CaseStatus `json:"status" gorm:"column:status"`
	Remarks           string     `json:"remarks,omitempty" gorm:"column:remarks;type:text"`
	Version           int64      `json:"-" gorm:"column:version"`
	AcceptedAt        *time.Time `json:"accepted_at,omitempty" gorm:"column:accepted_at"`
	MeetingStartedAt  *time.Time `json:"meeting_started_at,omitempty" gorm:"column:meeting_started_at"`
	MeetingFinishedAt *time.Time `json:"meeting_finished_at,omitempty" gorm:"column:meeting_finished_at"`
	CreatedAt         time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"column:updated_at"`

	Documents  []Document  `json:"documents,omitempty" gorm:"foreignKey:CaseID"`
	Booking    *Booking    `json:"booking,omitempty" gorm:"-"`
	Signatures []Signature `json:"signatures,omitempty" gorm:"foreignKey:CaseID"`
}

func (Case) TableName() string { return "cases" }

// RequiredTypeList splits the stored comma-separated required-document set.
func (c *Case) RequiredTypeList() []DocumentType {
	if c.RequiredTypes == "" {
		return nil
	}
	parts := strings.Split(c.RequiredTypes, ",")
	out := make([]DocumentType, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, DocumentType(p))
		}
	}
	return out
}

func JoinTypes(types []DocumentType) string {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ",")
}

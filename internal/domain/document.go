package domain

import "time"

type DocumentType string

const (
	DocTerminationForm      DocumentType = "termination_form"
	DocHomologationCert     DocumentType = "homologation_certificate"
	DocWorkerIDCardFront    DocumentType = "worker_id_card_front"
	DocWorkerIDCardBack     DocumentType = "worker_id_card_back"
	DocProofOfAddress       DocumentType = "proof_of_address"
	DocNoticeLetter         DocumentType = "notice_letter"
	DocExamCertificate      DocumentType = "exam_certificate"
	DocRegistrationForm     DocumentType = "registration_form"
	DocFGTSStatement        DocumentType = "fgts_statement"
	DocFGTSGuide            DocumentType = "fgts_guide"
	DocPaymentProof         DocumentType = "payment_proof"
	DocSettlementTerms      DocumentType = "settlement_terms"
	DocUnionAttendanceCert  DocumentType = "union_attendance_certificate"
	DocOther                DocumentType = "other"
)

var documentTypes = map[DocumentType]bool{
	DocTerminationForm:     true,
	DocHomologationCert:    true,
	DocWorkerIDCardFront:   true,
	DocWorkerIDCardBack:    true,
	DocProofOfAddress:      true,
	DocNoticeLetter:        true,
	DocExamCertificate:     true,
	DocRegistrationForm:    true,
	DocFGTSStatement:       true,
	DocFGTSGuide:           true,
	DocPaymentProof:        true,
	DocSettlementTerms:     true,
	DocUnionAttendanceCert: true,
	DocOther:               true,
}

func ValidDocumentType(t DocumentType) bool { return documentTypes[t] }

// DefaultRequiredTypes is the standard document set requested from the
// company when a case is created without an explicit list.
func DefaultRequiredTypes() []DocumentType {
	return []DocumentType{
		DocTerminationForm,
		DocWorkerIDCardFront,
		DocProofOfAddress,
		DocNoticeLetter,
		DocSettlementTerms,
	}
}

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// Document is one uploaded artifact for a case. At most one non-rejected
// document may exist per (case, type); rejected rows are kept as history
// and a re-upload of the same type creates a fresh pending row.
type Document struct {
	ID              string         `json:"id" gorm:"column:id;primaryKey"`
	CaseID          int64          `json:"case_id" gorm:"column:case_id;index"`
	Type            DocumentType   `json:"type" gorm:"column:type"`
	Status          DocumentStatus `json:"status" gorm:"column:status"`
	RejectionReason string         `json:"rejection_reason,omitempty" gorm:"column:rejection_reason;type:text"`
	BlobID          string         `json:"blob_id" gorm:"column:blob_id"`
	OriginalName    string         `json:"original_name" gorm:"column:original_name"`
	MimeType        string         `json:"mime_type" gorm:"column:mime_type"`
	Size            int64          `json:"size" gorm:"column:size"`
	ReviewedBy      int64          `json:"reviewed_by,omitempty" gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	CreatedAt       time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"column:updated_at"`
}

func (Document) TableName() string { return "documents" }

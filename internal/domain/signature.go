package domain

import "time"

type Party string

const (
	PartyCompany Party = "company"
	PartyUnion   Party = "union"
)

func ValidParty(p Party) bool { return p == PartyCompany || p == PartyUnion }

// Signature is one party's signing evidence for a case. At most one row
// exists per (case, party), backed by a unique index, and it is never
// updated once written.
type Signature struct {
	ID         int64     `json:"id" gorm:"column:id;primaryKey"`
	CaseID     int64     `json:"case_id" gorm:"column:case_id;uniqueIndex:idx_signatures_case_party"`
	Party      Party     `json:"party" gorm:"column:party;uniqueIndex:idx_signatures_case_party"`
	Confirmed  bool      `json:"confirmed" gorm:"column:confirmed"`
	ArtifactID string    `json:"artifact_id,omitempty" gorm:"column:artifact_id"`
	SignedBy   int64     `json:"signed_by" gorm:"column:signed_by"`
	SignedAt   time.Time `json:"signed_at" gorm:"column:signed_at"`
}

func (Signature) TableName() string { return "signatures" }

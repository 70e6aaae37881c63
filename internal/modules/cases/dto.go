package cases

import (
	"time"

	"homologacao/internal/domain"
)

type CreateCaseBody struct {
	EmployeeName      string   `json:"employee_name" binding:"required"`
	EmployeeRole      string   `json:"employee_role"`
	UnionID           int64    `json:"union_id" binding:"required"`
	TerminationReason string   `json:"termination_reason"`
	RequiredTypes     []string `json:"required_types"`
}

type BookBody struct {
	ResponsibleID int64     `json:"responsible_id" binding:"required"`
	Start         time.Time `json:"start" binding:"required"`
	End           time.Time `json:"end" binding:"required"`
}

type SignBody struct {
	Party      string `json:"party" binding:"required"`
	Confirmed  bool   `json:"confirmed"`
	ArtifactID string `json:"artifact_id"`
}

type RemarksBody struct {
	Remarks string `json:"remarks"`
}

func toDocumentTypes(raw []string) []domain.DocumentType {
	out := make([]domain.DocumentType, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.DocumentType(r))
	}
	return out
}

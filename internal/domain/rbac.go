package domain

// Action is a command a caller may attempt against the core. Authorization
// is a pure capability check, independent of any transport concern.
type Action string

const (
	ActionCreateCase      Action = "create_case"
	ActionListCases       Action = "list_cases"
	ActionAcceptCase      Action = "accept_case"
	ActionUploadDocument  Action = "upload_document"
	ActionReviewDocument  Action = "review_document"
	ActionListSlots       Action = "list_slots"
	ActionBookSlot        Action = "book_slot"
	ActionManageBooking   Action = "manage_booking"
	ActionManageMeeting   Action = "manage_meeting"
	ActionSign            Action = "sign"
	ActionFinalizeCheck   Action = "finalize_check"
	ActionUpdateRemarks   Action = "update_remarks"
	ActionManageCapacity  Action = "manage_capacity"
)

var capabilities = map[Role]map[Action]bool{
	RoleCompany: {
		ActionCreateCase:     true,
		ActionListCases:      true,
		ActionUploadDocument: true,
		ActionListSlots:      true,
		ActionBookSlot:       true,
		ActionSign:           true,
		ActionFinalizeCheck:  true,
	},
	RoleUnion: {
		ActionListCases:      true,
		ActionAcceptCase:     true,
		ActionReviewDocument: true,
		ActionListSlots:      true,
		ActionManageBooking:  true,
		ActionManageMeeting:  true,
		ActionSign:           true,
		ActionFinalizeCheck:  true,
		ActionUpdateRemarks:  true,
		ActionManageCapacity: true,
	},
}

// Can reports whether a role is allowed to perform an action. Admin can
// do everything.
func Can(role Role, action Action) bool {
	if role == RoleAdmin {
		return true
	}
	return capabilities[role][action]
}

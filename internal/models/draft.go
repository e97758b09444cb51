package models

// DraftKey names the admission draft slot. The desk client uses it as a file name and the API as a
// redis key prefix.
const DraftKey = "academy_sparkle_admission_draft"

// AdmissionDraft is the in-progress admission form. Amounts are the raw typed strings.
// Drafts carry no version; fields missing from a stored draft keep their zero value.
type AdmissionDraft struct {
	StudentName           string   `json:"studentName"`
	FatherName            string   `json:"fatherName"`
	Gender                string   `json:"gender"`
	ClassID               string   `json:"classId"`
	SessionID             string   `json:"sessionId"`
	Group                 string   `json:"group"`
	Subjects              []string `json:"subjects"`
	StudentPhone          string   `json:"studentPhone"`
	ParentPhone           string   `json:"parentPhone"`
	Address               string   `json:"address"`
	AdmissionDate         string   `json:"admissionDate"`
	TotalFee              string   `json:"totalFee"`
	PaidAmount            string   `json:"paidAmount"`
	IsCustomFeeMode       bool     `json:"isCustomFeeMode"`
	Photo                 string   `json:"photo"`
	PendingRegistrationID string   `json:"pendingRegistrationId,omitempty"`
}

// IsEmpty reports whether nothing has been typed into the draft.
func (d AdmissionDraft) IsEmpty() bool {
	return d.StudentName == "" && d.FatherName == "" && d.Gender == "" && d.ClassID == "" &&
		d.SessionID == "" && d.Group == "" && len(d.Subjects) == 0 && d.StudentPhone == "" &&
		d.ParentPhone == "" && d.Address == "" && d.AdmissionDate == "" && d.TotalFee == "" &&
		d.PaidAmount == "" && !d.IsCustomFeeMode && d.Photo == "" && d.PendingRegistrationID == ""
}

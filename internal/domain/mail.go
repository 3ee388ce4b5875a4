package domain

import "time"

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const MailTypeBulkCommitSummary = "bulk_commit_summary"

type BulkCommitSummaryMailData struct {
	FacilityName string    `json:"facilityName"`
	StaffName    string    `json:"staffName"`
	Category     string    `json:"category"`
	RecordedAt   time.Time `json:"recordedAt"`
	Succeeded    int       `json:"succeeded"`
	Skipped      int       `json:"skipped"`
}

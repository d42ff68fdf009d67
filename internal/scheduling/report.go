package scheduling

import "github.com/google/uuid"

// SlotReport is the generation outcome for one schedule slot.
type SlotReport struct {
	SlotID               uuid.UUID `json:"slot_id"`
	GeneratedCount       int       `json:"generated_count"`
	SkippedConflictCount int       `json:"skipped_conflict_count"`
	SkippedPastDateCount int       `json:"skipped_past_date_count"`
	Warnings             []string  `json:"warnings"`
}

// GenerationReport aggregates the per-slot outcomes of one Generate call.
type GenerationReport struct {
	ClassID              uuid.UUID    `json:"class_id"`
	GeneratedCount       int          `json:"generated_count"`
	SkippedConflictCount int          `json:"skipped_conflict_count"`
	SkippedPastDateCount int          `json:"skipped_past_date_count"`
	SlotReports          []SlotReport `json:"slot_reports"`
	Warnings             []string     `json:"warnings"`
}

func (r *GenerationReport) addSlot(sr SlotReport) {
	r.GeneratedCount += sr.GeneratedCount
	r.SkippedConflictCount += sr.SkippedConflictCount
	r.SkippedPastDateCount += sr.SkippedPastDateCount
	r.Warnings = append(r.Warnings, sr.Warnings...)
	r.SlotReports = append(r.SlotReports, sr)
}

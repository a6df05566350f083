package dto

import "github.com/noah-isme/ppdb-api/internal/models"

// SectionPatch is a partial registration update. A nil section keeps the
// stored value; a present section replaces that section wholesale, so
// clearing a field means submitting the section with that field empty.
type SectionPatch struct {
	Student   *models.StudentSection  `json:"student,omitempty"`
	Father    *models.ParentSection   `json:"father,omitempty"`
	Mother    *models.ParentSection   `json:"mother,omitempty"`
	Guardian  *models.GuardianSection `json:"guardian,omitempty"`
	Documents *models.DocumentRefs    `json:"documents,omitempty"`
}

// Empty reports whether the patch carries no sections at all.
func (p SectionPatch) Empty() bool {
	return p.Student == nil && p.Father == nil && p.Mother == nil && p.Guardian == nil && p.Documents == nil
}

// VerificationActionRequest is the administrator decision payload.
type VerificationActionRequest struct {
	Status          models.RegistrationStatus `json:"status" validate:"required,oneof=verified rejected"`
	RejectionReason string                    `json:"rejection_reason"`
}

// ProfileResponse wraps the applicant's registration together with the wave
// fee schedule currently applicable to it.
type ProfileResponse struct {
	Registration *models.Registration `json:"registration"`
	WaveFees     models.FeeItems      `json:"wave_fees,omitempty"`
}

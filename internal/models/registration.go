package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// RegistrationStatus tracks the admission lifecycle.
type RegistrationStatus string

const (
	StatusDraft    RegistrationStatus = "draft"
	StatusPending  RegistrationStatus = "pending"
	StatusVerified RegistrationStatus = "verified"
	StatusRejected RegistrationStatus = "rejected"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// Checklist carries the three derived completeness flags. These are always
// recomputed from section data, never accepted as input.
type Checklist struct {
	Biodata   bool `json:"biodata"`
	Documents bool `json:"documents"`
	Payment   bool `json:"payment"`
}

func (c Checklist) Value() (driver.Value, error) { return json.Marshal(c) }
func (c *Checklist) Scan(src interface{}) error  { return scanJSONB(src, c) }

// Address is the applicant's home address.
type Address struct {
	Street   string `json:"street"`
	RT       string `json:"rt"`
	RW       string `json:"rw"`
	Village  string `json:"village"`
	District string `json:"district"`
	City     string `json:"city"`
	Province string `json:"province"`
}

// StudentSection holds the applicant biodata form.
type StudentSection struct {
	FullName     string     `json:"full_name"`
	Gender       string     `json:"gender"`
	BirthPlace   string     `json:"birth_place"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	OriginSchool string     `json:"origin_school"`
	Religion     string     `json:"religion"`
	Address      Address    `json:"address"`
	LivingWith   string     `json:"living_with"`
	SiblingCount int        `json:"sibling_count"`
}

func (s StudentSection) Value() (driver.Value, error) { return json.Marshal(s) }
func (s *StudentSection) Scan(src interface{}) error  { return scanJSONB(src, s) }

// ParentSection holds father or mother details.
type ParentSection struct {
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Education string     `json:"education"`
	Job       string     `json:"job"`
	Phone     string     `json:"phone"`
}

func (p ParentSection) Value() (driver.Value, error) { return json.Marshal(p) }
func (p *ParentSection) Scan(src interface{}) error  { return scanJSONB(src, p) }

// GuardianSection holds guardian details when the applicant lives with one.
type GuardianSection struct {
	Name    string `json:"name"`
	Job     string `json:"job"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (g GuardianSection) Value() (driver.Value, error) { return json.Marshal(g) }
func (g *GuardianSection) Scan(src interface{}) error  { return scanJSONB(src, g) }

// DocumentRefs stores opaque blob references for uploaded documents.
type DocumentRefs struct {
	FamilyCard       string `json:"family_card"`
	BirthCertificate string `json:"birth_certificate"`
	PaymentProof     string `json:"payment_proof"`
}

func (d DocumentRefs) Value() (driver.Value, error) { return json.Marshal(d) }
func (d *DocumentRefs) Scan(src interface{}) error  { return scanJSONB(src, d) }

// SectionTimestamps records when each section was last touched. Display
// only; nothing depends on these values.
type SectionTimestamps struct {
	Biodata          *time.Time `json:"biodata,omitempty"`
	FamilyCard       *time.Time `json:"family_card,omitempty"`
	BirthCertificate *time.Time `json:"birth_certificate,omitempty"`
	PaymentProof     *time.Time `json:"payment_proof,omitempty"`
}

func (t SectionTimestamps) Value() (driver.Value, error) { return json.Marshal(t) }
func (t *SectionTimestamps) Scan(src interface{}) error  { return scanJSONB(src, t) }

// Registration is one applicant's admission record, exactly one per account.
// Records are never deleted; they remain as the audit trail.
type Registration struct {
	ID                 string             `db:"id" json:"id"`
	UserID             string             `db:"user_id" json:"user_id"`
	RegistrationNumber *string            `db:"registration_number" json:"registration_number,omitempty"`
	Wave               string             `db:"wave" json:"wave"`
	Status             RegistrationStatus `db:"status" json:"status"`
	Checklist          Checklist          `db:"checklist" json:"checklist"`
	Student            StudentSection     `db:"student" json:"student"`
	Father             ParentSection      `db:"father" json:"father"`
	Mother             ParentSection      `db:"mother" json:"mother"`
	Guardian           GuardianSection    `db:"guardian" json:"guardian"`
	Documents          DocumentRefs       `db:"documents" json:"documents"`
	SectionTimes       SectionTimestamps  `db:"section_times" json:"section_times"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

// RegistrationDetail joins the owning account onto the record for the admin
// verification queue.
type RegistrationDetail struct {
	Registration
	ApplicantName  string `db:"applicant_name" json:"applicant_name"`
	ApplicantEmail string `db:"applicant_email" json:"applicant_email"`
	ApplicantPhone string `db:"applicant_phone" json:"applicant_phone"`
}

package service

import "github.com/noah-isme/ppdb-api/internal/models"

// EvaluateChecklist derives the three completeness flags from the merged
// registration record. Flags are overwritten, never OR'd with history, so a
// cleared field drops its flag again. Payment proof is tracked by the
// payment flag alone and never counts toward the documents flag.
func EvaluateChecklist(reg *models.Registration) models.Checklist {
	return models.Checklist{
		Biodata: reg.Student.FullName != "" &&
			reg.Student.BirthPlace != "" &&
			reg.Student.Address.Street != "",
		Documents: reg.Documents.FamilyCard != "" &&
			reg.Documents.BirthCertificate != "",
		Payment: reg.Documents.PaymentProof != "",
	}
}

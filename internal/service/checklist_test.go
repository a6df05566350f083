package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/ppdb-api/internal/models"
)

func TestEvaluateChecklistEmptyRecord(t *testing.T) {
	checklist := EvaluateChecklist(&models.Registration{})
	assert.False(t, checklist.Biodata)
	assert.False(t, checklist.Documents)
	assert.False(t, checklist.Payment)
}

func TestEvaluateChecklistBiodataRequiresAllThreeFields(t *testing.T) {
	reg := &models.Registration{
		Student: models.StudentSection{
			FullName:   "Budi Santoso",
			BirthPlace: "Palembang",
		},
	}
	assert.False(t, EvaluateChecklist(reg).Biodata)

	reg.Student.Address.Street = "Jl. Merdeka 1"
	assert.True(t, EvaluateChecklist(reg).Biodata)
}

func TestEvaluateChecklistPaymentProofDoesNotCountAsDocument(t *testing.T) {
	reg := &models.Registration{
		Documents: models.DocumentRefs{PaymentProof: "/uploads/bukti.jpg"},
	}
	checklist := EvaluateChecklist(reg)
	assert.False(t, checklist.Documents)
	assert.True(t, checklist.Payment)

	reg.Documents.FamilyCard = "/uploads/kk.pdf"
	reg.Documents.BirthCertificate = "/uploads/akta.pdf"
	assert.True(t, EvaluateChecklist(reg).Documents)
}

func TestEvaluateChecklistFlagsDropWhenFieldsCleared(t *testing.T) {
	reg := &models.Registration{
		Documents: models.DocumentRefs{
			FamilyCard:       "/uploads/kk.pdf",
			BirthCertificate: "/uploads/akta.pdf",
		},
		Checklist: models.Checklist{Documents: true},
	}
	assert.True(t, EvaluateChecklist(reg).Documents)

	reg.Documents.FamilyCard = ""
	assert.False(t, EvaluateChecklist(reg).Documents)
}

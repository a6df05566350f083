package dto

import (
	"time"

	"github.com/noah-isme/ppdb-api/internal/models"
)

// WaveInput is one wave in a catalog replacement request.
type WaveInput struct {
	Name      string           `json:"name" validate:"required"`
	StartDate *time.Time       `json:"start_date"`
	EndDate   *time.Time       `json:"end_date"`
	FeeItems  map[string]int64 `json:"fee_items"`
}

// ReplaceWavesRequest replaces the entire wave catalog. Waves are not merged
// field by field; the submitted list becomes the stored list.
type ReplaceWavesRequest struct {
	Waves []WaveInput `json:"waves" validate:"dive"`
}

// ToModels converts the request into catalog order preserving positions.
func (r ReplaceWavesRequest) ToModels() []models.Wave {
	waves := make([]models.Wave, 0, len(r.Waves))
	for i, in := range r.Waves {
		fees := models.FeeItems{}
		for key, amount := range in.FeeItems {
			fees[key] = amount
		}
		waves = append(waves, models.Wave{
			Name:      in.Name,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			FeeItems:  fees,
			Position:  i,
		})
	}
	return waves
}

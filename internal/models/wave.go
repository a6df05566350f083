package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultWaveName is assigned when no wave matches and the catalog offers no
// fallback of its own.
const DefaultWaveName = "Gelombang 1"

// FeeKeys enumerates the fee categories a wave schedule may carry.
var FeeKeys = []string{
	"registration",
	"participation",
	"uniformSport",
	"uniformBatik",
	"developmentArts",
	"developmentAcademic",
	"books",
	"orientation",
	"lab",
	"library",
	"healthUnit",
	"osis",
	"tuition",
}

// FeeItems maps a fee category to an amount in rupiah.
type FeeItems map[string]int64

// Value implements driver.Valuer for JSONB storage.
func (f FeeItems) Value() (driver.Value, error) {
	if f == nil {
		f = FeeItems{}
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB storage.
func (f *FeeItems) Scan(src interface{}) error {
	return scanJSONB(src, f)
}

// Total sums all fee amounts.
func (f FeeItems) Total() int64 {
	var total int64
	for _, amount := range f {
		total += amount
	}
	return total
}

// Wave is one enrollment period with its own fee schedule. Bounds are
// inclusive; a missing bound leaves that side open.
type Wave struct {
	Name      string     `db:"name" json:"name"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	FeeItems  FeeItems   `db:"fee_items" json:"fee_items"`
	Position  int        `db:"position" json:"-"`
}

// Bounded reports whether both date bounds are present.
func (w Wave) Bounded() bool {
	return w.StartDate != nil && w.EndDate != nil
}

// Contains reports whether the instant falls inside the wave's date range,
// treating a missing bound as unbounded on that side.
func (w Wave) Contains(now time.Time) bool {
	if w.StartDate != nil && now.Before(*w.StartDate) {
		return false
	}
	if w.EndDate != nil && now.After(*w.EndDate) {
		return false
	}
	return true
}

func scanJSONB(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

package models

import "time"

const (
	IndicatorStatusMet    = "Mencapai Target"
	IndicatorStatusNotMet = "Tidak Mencapai Target"
)

type Indicator struct {
	ID        string
	Name      string
	Region    *string
	Capaian   *float64
	Target    *float64
	Status    *string
	Date      *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeriveIndicatorStatus computes the status from capaian vs target. Returns
// nil when either side is missing or the target is zero, matching the rule
// that a status is only derived for a meaningful comparison.
func DeriveIndicatorStatus(capaian, target *float64) *string {
	if capaian == nil || target == nil || *target == 0 {
		return nil
	}
	status := IndicatorStatusNotMet
	if *capaian >= *target {
		status = IndicatorStatusMet
	}
	return &status
}

type AccreditationStat struct {
	ID         string
	Paripurna  int
	Utama      int
	Madya      int
	RecordedAt *time.Time
	Year       *int
	Month      *int
	Region     *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const DocumentCategoryProfilePhoto = "profile-photo"

type Document struct {
	ID          string
	Title       string
	Description *string
	Category    *string
	ObjectKey   *string
	FileName    *string
	MimeType    *string
	FileSize    int64
	FileURL     *string
	PublishedAt *time.Time
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ActivityLog struct {
	ID          string
	Type        string
	Description string
	UserID      *string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// ActivityActor is the joined user snippet returned with a log entry.
type ActivityActor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type ActivityLogEntry struct {
	ActivityLog
	User *ActivityActor
}

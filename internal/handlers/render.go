package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dextryayers/rujukan-jatim/internal/models"
)

func respondError(c *gin.Context, status int, code string) {
	c.JSON(status, gin.H{"error": code})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation_failed",
		"details": err.Error(),
	})
}

type userResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Name        string    `json:"name"`
	Phone       *string   `json:"phone"`
	City        *string   `json:"city"`
	Institution *string   `json:"institution"`
	PhotoURL    *string   `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func renderUser(u models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role),
		Name:        u.Name,
		Phone:       u.Phone,
		City:        u.City,
		Institution: u.Institution,
		PhotoURL:    u.PhotoURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func renderUsers(users []models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, renderUser(u))
	}
	return out
}

type indicatorResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Region    *string   `json:"region"`
	Capaian   *float64  `json:"capaian"`
	Target    *float64  `json:"target"`
	Status    *string   `json:"status"`
	Date      *string   `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func renderIndicator(ind models.Indicator) indicatorResponse {
	resp := indicatorResponse{
		ID:        ind.ID,
		Name:      ind.Name,
		Region:    ind.Region,
		Capaian:   ind.Capaian,
		Target:    ind.Target,
		Status:    ind.Status,
		CreatedAt: ind.CreatedAt,
		UpdatedAt: ind.UpdatedAt,
	}
	if ind.Date != nil {
		date := ind.Date.Format("2006-01-02")
		resp.Date = &date
	}
	return resp
}

func renderIndicators(indicators []models.Indicator) []indicatorResponse {
	out := make([]indicatorResponse, 0, len(indicators))
	for _, ind := range indicators {
		out = append(out, renderIndicator(ind))
	}
	return out
}

type accreditationResponse struct {
	ID         *string    `json:"id"`
	Paripurna  int        `json:"paripurna"`
	Utama      int        `json:"utama"`
	Madya      int        `json:"madya"`
	RecordedAt *time.Time `json:"recorded_at"`
	Year       *int       `json:"year"`
	Month      *int       `json:"month"`
	Region     *string    `json:"region"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

func renderAccreditation(stat models.AccreditationStat) accreditationResponse {
	id := stat.ID
	updatedAt := stat.UpdatedAt
	return accreditationResponse{
		ID:         &id,
		Paripurna:  stat.Paripurna,
		Utama:      stat.Utama,
		Madya:      stat.Madya,
		RecordedAt: stat.RecordedAt,
		Year:       stat.Year,
		Month:      stat.Month,
		Region:     stat.Region,
		UpdatedAt:  &updatedAt,
	}
}

func renderAccreditations(stats []models.AccreditationStat) []accreditationResponse {
	out := make([]accreditationResponse, 0, len(stats))
	for _, stat := range stats {
		out = append(out, renderAccreditation(stat))
	}
	return out
}

type documentResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	FileName    *string    `json:"file_name"`
	MimeType    *string    `json:"mime_type"`
	FileSize    int64      `json:"file_size"`
	FileURL     *string    `json:"file_url"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedBy   *string    `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func renderDocument(doc models.Document) documentResponse {
	return documentResponse{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Category:    doc.Category,
		FileName:    doc.FileName,
		MimeType:    doc.MimeType,
		FileSize:    doc.FileSize,
		FileURL:     doc.FileURL,
		PublishedAt: doc.PublishedAt,
		CreatedBy:   doc.CreatedBy,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func renderDocuments(docs []models.Document) []documentResponse {
	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, renderDocument(doc))
	}
	return out
}

type activityResponse struct {
	ID          string                `json:"id"`
	Type        string                `json:"type"`
	Description string                `json:"description"`
	Metadata    map[string]any        `json:"metadata"`
	User        *models.ActivityActor `json:"user"`
	CreatedAt   time.Time             `json:"created_at"`
}

func renderActivities(entries []models.ActivityLogEntry) []activityResponse {
	out := make([]activityResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, activityResponse{
			ID:          entry.ID,
			Type:        entry.Type,
			Description: entry.Description,
			Metadata:    entry.Metadata,
			User:        entry.User,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return out
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeLayout is the format of PatientRecord.Time.
const TimeLayout = "2006-01-02 15:04:05"

// PatientRecord is one classified CT upload. Records are never updated.
type PatientRecord struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Name          string    `gorm:"type:varchar(100)" json:"name"`
	Age           int       `json:"age"`
	Gender        string    `gorm:"type:varchar(10)" json:"gender"`
	Address       string    `gorm:"type:text" json:"address"`
	ImageSHA256   string    `gorm:"type:varchar(64);index" json:"image_sha256"`
	Prediction    string    `gorm:"type:varchar(64)" json:"prediction"`
	Probabilities []float32 `gorm:"type:text;serializer:json" json:"probabilities"`
	ArtifactPath  *string   `gorm:"type:text" json:"artifact_path,omitempty"`
	Time          string    `gorm:"type:varchar(100)" json:"time"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	CTImage *CTImage `gorm:"foreignKey:ImageSHA256;references:SHA256" json:"-"`
}

// BeforeCreate keeps an ID assigned by the caller so artifacts can be keyed
// on it before the row exists.
func (p *PatientRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	if p.Time == "" {
		p.Time = now.Format(TimeLayout)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now.UTC()
	}
	return
}

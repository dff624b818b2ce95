package repositories

import (
	"context"

	"lung-server/db"
	"lung-server/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type patientPgRepository struct {
	db db.Database
}

func NewPatientPgRepository(database db.Database) PatientRepository {
	return &patientPgRepository{db: database}
}

func (r *patientPgRepository) CreateWithImage(ctx context.Context, record *entities.PatientRecord, image *entities.CTImage) error {
	return r.db.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if image != nil {
			// identical uploads share one blob row
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(image).Error; err != nil {
				return err
			}
			record.ImageSHA256 = image.SHA256
		}
		return tx.Omit(clause.Associations).Create(record).Error
	})
}

func (r *patientPgRepository) GetByUserID(ctx context.Context, userID string) ([]entities.PatientRecord, error) {
	var records []entities.PatientRecord
	err := r.db.GetDB().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&records).Error
	return records, err
}

func (r *patientPgRepository) GetImages(ctx context.Context, digests []string) (map[string][]byte, error) {
	images := make(map[string][]byte, len(digests))
	if len(digests) == 0 {
		return images, nil
	}
	var rows []entities.CTImage
	if err := r.db.GetDB().WithContext(ctx).Where("sha256 IN ?", digests).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		images[row.SHA256] = row.Data
	}
	return images, nil
}

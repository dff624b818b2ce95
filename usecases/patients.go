package usecases

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"lung-server/cache"
	"lung-server/repositories"
)

// PatientView is a stored record prepared for JSON transport.
type PatientView struct {
	PatientID           string    `json:"patient_id"`
	PatientName         string    `json:"patient_name"`
	PatientAge          int       `json:"patient_age"`
	PatientGender       string    `json:"patient_gender"`
	PatientAddress      string    `json:"patient_address"`
	Time                string    `json:"time"`
	CTImageBase64       *string   `json:"ct_image_base64"`
	PredictionResult    string    `json:"prediction_result"`
	PredictionImagePath *string   `json:"prediction_image_path"`
	Probabilities       []float32 `json:"probabilities"`
}

type PatientUseCase struct {
	users    repositories.UserRepository
	patients repositories.PatientRepository
	records  *cache.UserCache[[]PatientView]
}

func NewPatientUseCase(users repositories.UserRepository, patients repositories.PatientRepository, records *cache.UserCache[[]PatientView]) *PatientUseCase {
	return &PatientUseCase{users: users, patients: patients, records: records}
}

// ListByUser returns the user's records oldest first with CT images base64-encoded.
func (uc *PatientUseCase) ListByUser(ctx context.Context, userID string) ([]PatientView, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, missingField("user_id")
	}

	_, err := uc.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var gen uint64
	if uc.records != nil {
		cached, g, ok := uc.records.Get(userID)
		if ok {
			return cached, nil
		}
		gen = g
	}

	records, err := uc.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	digests := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.ImageSHA256 != "" && !seen[r.ImageSHA256] {
			seen[r.ImageSHA256] = true
			digests = append(digests, r.ImageSHA256)
		}
	}
	images, err := uc.patients.GetImages(ctx, digests)
	if err != nil {
		return nil, err
	}

	views := make([]PatientView, 0, len(records))
	for _, r := range records {
		view := PatientView{
			PatientID:           r.ID,
			PatientName:         r.Name,
			PatientAge:          r.Age,
			PatientGender:       r.Gender,
			PatientAddress:      r.Address,
			Time:                r.Time,
			PredictionResult:    r.Prediction,
			PredictionImagePath: r.ArtifactPath,
			Probabilities:       r.Probabilities,
		}
		if data, ok := images[r.ImageSHA256]; ok && len(data) > 0 {
			encoded := base64.StdEncoding.EncodeToString(data)
			view.CTImageBase64 = &encoded
		}
		views = append(views, view)
	}

	if uc.records != nil {
		uc.records.SetAt(userID, gen, views)
	}
	return views, nil
}

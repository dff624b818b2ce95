package usecases

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"lung-server/cache"
	"lung-server/entities"
	"lung-server/imaging"
	"lung-server/inference"
	"lung-server/repositories"
	"lung-server/ws"

	"github.com/google/uuid"
)

// Classifier maps a normalized CT batch to one probability per inference.Classes entry.
type Classifier interface {
	Predict(ctx context.Context, tensor imaging.Tensor) ([]float32, error)
}

// ArtifactStore persists rendered result images.
type ArtifactStore interface {
	Save(key string, data []byte) (string, error)
	Remove(location string) error
}

// EventPublisher pushes events to a user's live subscription.
type EventPublisher interface {
	Publish(userID string, event interface{}) error
}

type PredictionRequest struct {
	UserID         string
	PatientName    string
	PatientAge     string
	PatientGender  string
	PatientAddress string
	Image          []byte
	Filename       string
}

type PredictionResult struct {
	RecordID      string
	Label         string
	Probabilities []float32
	Accepted      bool
	ImagePath     *string
	Time          string
}

// PredictionEvent is pushed to the owner once a record is stored.
type PredictionEvent struct {
	Type          string    `json:"type"`
	RecordID      string    `json:"record_id"`
	PatientName   string    `json:"patient_name"`
	Prediction    string    `json:"prediction"`
	Probabilities []float32 `json:"probabilities"`
	ImagePath     *string   `json:"image_path,omitempty"`
	Time          string    `json:"time"`
}

const EventPredictionCompleted = "prediction.completed"

type PredictionUseCase struct {
	users      repositories.UserRepository
	patients   repositories.PatientRepository
	classifier Classifier
	artifacts  ArtifactStore
	events     EventPublisher
	records    *cache.UserCache[[]PatientView]
}

func NewPredictionUseCase(
	users repositories.UserRepository,
	patients repositories.PatientRepository,
	classifier Classifier,
	artifacts ArtifactStore,
	events EventPublisher,
	records *cache.UserCache[[]PatientView],
) *PredictionUseCase {
	return &PredictionUseCase{
		users:      users,
		patients:   patients,
		classifier: classifier,
		artifacts:  artifacts,
		events:     events,
		records:    records,
	}
}

// Predict classifies the uploaded scan and stores a patient record for it.
// An artifact is rendered only when the confidence gate accepts the label.
func (uc *PredictionUseCase) Predict(ctx context.Context, req PredictionRequest) (*PredictionResult, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, missingField("user_id")
	}
	age, err := parseAge(req.PatientAge)
	if err != nil {
		return nil, err
	}
	if len(req.PatientName) > 100 {
		return nil, invalidField("patient_name", "is longer than 100 characters")
	}
	if len(req.PatientGender) > 10 {
		return nil, invalidField("patient_gender", "is longer than 10 characters")
	}

	user, err := uc.users.GetByID(ctx, req.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(req.Image) == 0 {
		return nil, ErrMissingImage
	}

	img, tensor, err := imaging.Prepare(req.Image)
	if err != nil {
		return nil, err
	}
	log.Printf("Decoded %q: %d bytes", req.Filename, len(req.Image))

	probs, err := uc.classifier.Predict(ctx, tensor)
	if err != nil {
		return nil, err
	}

	resolution, err := inference.Resolve(probs)
	if err != nil {
		return nil, err
	}
	log.Printf("Prediction for user %s: %s (confidence %.4f, accepted=%t)",
		user.ID, resolution.Label, resolution.Confidence, resolution.Accepted)

	recordID := uuid.New().String()

	var artifact *string
	if resolution.Accepted {
		rendered, err := imaging.Render(img, resolution.Label)
		if err != nil {
			return nil, err
		}
		location, err := uc.artifacts.Save(recordID, rendered)
		if err != nil {
			return nil, fmt.Errorf("failed to store artifact: %w", err)
		}
		artifact = &location
		log.Printf("Stored artifact %s", location)
	}

	record := &entities.PatientRecord{
		ID:            recordID,
		UserID:        user.ID,
		Name:          req.PatientName,
		Age:           age,
		Gender:        req.PatientGender,
		Address:       req.PatientAddress,
		Prediction:    resolution.Label,
		Probabilities: resolution.Probabilities,
		ArtifactPath:  artifact,
	}
	if err := uc.patients.CreateWithImage(ctx, record, entities.NewCTImage(req.Image)); err != nil {
		if artifact != nil {
			if rmErr := uc.artifacts.Remove(*artifact); rmErr != nil {
				log.Printf("failed to remove orphaned artifact %s: %v", *artifact, rmErr)
			}
		}
		return nil, fmt.Errorf("failed to save patient record: %w", err)
	}

	if uc.records != nil {
		uc.records.Invalidate(user.ID)
	}
	uc.publish(user.ID, record)

	return &PredictionResult{
		RecordID:      record.ID,
		Label:         resolution.Label,
		Probabilities: resolution.Probabilities,
		Accepted:      resolution.Accepted,
		ImagePath:     artifact,
		Time:          record.Time,
	}, nil
}

func (uc *PredictionUseCase) publish(userID string, record *entities.PatientRecord) {
	if uc.events == nil {
		return
	}
	err := uc.events.Publish(userID, PredictionEvent{
		Type:          EventPredictionCompleted,
		RecordID:      record.ID,
		PatientName:   record.Name,
		Prediction:    record.Prediction,
		Probabilities: record.Probabilities,
		ImagePath:     record.ArtifactPath,
		Time:          record.Time,
	})
	if err != nil && !errors.Is(err, ws.ErrNotConnected) {
		log.Printf("failed to publish prediction event to %s: %v", userID, err)
	}
}

func parseAge(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	age, err := strconv.Atoi(raw)
	if err != nil || age < 0 {
		return 0, invalidField("patient_age", "must be a non-negative integer")
	}
	return age, nil
}

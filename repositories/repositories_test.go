package repositories

import (
	"context"
	"testing"
	"time"

	"lung-server/db/dbtest"
	"lung-server/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUserPgRepository(dbtest.New(t))

	user := &entities.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserPgRepository(dbtest.New(t))

	require.NoError(t, repo.Create(ctx, &entities.User{Name: "a", Email: "same@example.com", PasswordHash: "x"}))
	err := repo.Create(ctx, &entities.User{Name: "b", Email: "same@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPatientRepository_RoundTripAndOrder(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	users := NewUserPgRepository(database)
	patients := NewPatientPgRepository(database)

	owner := &entities.User{Name: "Dr", Email: "dr@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, owner))
	other := &entities.User{Name: "Other", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, other))

	path := "static/predictions/a.png"
	base := time.Now().UTC()
	names := []string{"first", "second", "third"}
	for i, name := range names {
		rec := &entities.PatientRecord{
			UserID:        owner.ID,
			Name:          name,
			Age:           40 + i,
			Gender:        "F",
			Address:       "1 Main St",
			Prediction:    "Normal",
			Probabilities: []float32{0.01, 0.02, 0.95, 0.02},
			ArtifactPath:  &path,
			Time:          "2026-10-14 10:00:00",
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, patients.CreateWithImage(ctx, rec, entities.NewCTImage([]byte("same scan"))))
	}
	require.NoError(t, patients.CreateWithImage(ctx, &entities.PatientRecord{UserID: other.ID, Name: "x"}, entities.NewCTImage([]byte("other scan"))))

	got, err := patients.GetByUserID(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, rec := range got {
		assert.Equal(t, names[i], rec.Name)
		assert.Equal(t, 40+i, rec.Age)
		assert.Equal(t, "F", rec.Gender)
		assert.Equal(t, "1 Main St", rec.Address)
		assert.Equal(t, "Normal", rec.Prediction)
		assert.Equal(t, "2026-10-14 10:00:00", rec.Time)
		assert.Equal(t, []float32{0.01, 0.02, 0.95, 0.02}, rec.Probabilities)
		require.NotNil(t, rec.ArtifactPath)
		assert.Equal(t, path, *rec.ArtifactPath)
	}

	var blobs int64
	require.NoError(t, database.GetDB().Model(&entities.CTImage{}).Count(&blobs).Error)
	assert.Equal(t, int64(2), blobs, "identical uploads should share a blob")

	images, err := patients.GetImages(ctx, []string{got[0].ImageSHA256})
	require.NoError(t, err)
	assert.Equal(t, []byte("same scan"), images[got[0].ImageSHA256])
}

func TestPatientRepository_RejectsUnknownUser(t *testing.T) {
	ctx := context.Background()
	patients := NewPatientPgRepository(dbtest.New(t))

	err := patients.CreateWithImage(ctx, &entities.PatientRecord{UserID: "missing"}, entities.NewCTImage([]byte("scan")))
	assert.Error(t, err)
}

func TestPatientRepository_EmptyImageLookup(t *testing.T) {
	patients := NewPatientPgRepository(dbtest.New(t))
	images, err := patients.GetImages(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, images)
}

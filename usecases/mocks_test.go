package usecases

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"

	"lung-server/entities"
	"lung-server/imaging"
	"lung-server/repositories"
	"lung-server/ws"

	"github.com/stretchr/testify/require"
)

var _ repositories.UserRepository = (*MockUserRepository)(nil)

// MockUserRepository keeps users in memory.
type MockUserRepository struct {
	mu         sync.Mutex
	byID       map[string]*entities.User
	CreateFunc func(ctx context.Context, user *entities.User) error
	GetByIDErr error
}

func NewMockUserRepository(users ...*entities.User) *MockUserRepository {
	m := &MockUserRepository{byID: map[string]*entities.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	m.byID[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

var _ repositories.PatientRepository = (*MockPatientRepository)(nil)

// MockPatientRepository records what the use cases store.
type MockPatientRepository struct {
	mu                   sync.Mutex
	Records              []entities.PatientRecord
	Images               map[string][]byte
	CreateErr            error
	GetByUserIDCallCount int32
}

func NewMockPatientRepository() *MockPatientRepository {
	return &MockPatientRepository{Images: map[string][]byte{}}
}

func (m *MockPatientRepository) CreateWithImage(ctx context.Context, record *entities.PatientRecord, image *entities.CTImage) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if image != nil {
		m.Images[image.SHA256] = image.Data
		record.ImageSHA256 = image.SHA256
	}
	if record.Time == "" {
		record.Time = "2026-10-14 09:30:00"
	}
	m.Records = append(m.Records, *record)
	return nil
}

func (m *MockPatientRepository) GetByUserID(ctx context.Context, userID string) ([]entities.PatientRecord, error) {
	atomic.AddInt32(&m.GetByUserIDCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.PatientRecord
	for _, r := range m.Records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockPatientRepository) GetImages(ctx context.Context, digests []string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string][]byte{}
	for _, d := range digests {
		if data, ok := m.Images[d]; ok {
			out[d] = data
		}
	}
	return out, nil
}

var _ Classifier = (*fakeClassifier)(nil)

type fakeClassifier struct {
	probs []float32
	err   error
	calls int32
}

func (f *fakeClassifier) Predict(ctx context.Context, tensor imaging.Tensor) ([]float32, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.probs, nil
}

var _ ArtifactStore = (*memStore)(nil)

type memStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (s *memStore) Save(key string, data []byte) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := "static/predictions/" + key + ".png"
	s.files[loc] = data
	return loc, nil
}

func (s *memStore) Remove(location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, location)
	return nil
}

var _ EventPublisher = (*recordingPublisher)(nil)

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]interface{}
}

func (p *recordingPublisher) Publish(userID string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		return ws.ErrNotConnected
	}
	p.events[userID] = append(p.events[userID], event)
	return nil
}

var errBoom = errors.New("boom")

func scanPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 4)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var errDuplicateFromRepo = repositories.ErrDuplicate

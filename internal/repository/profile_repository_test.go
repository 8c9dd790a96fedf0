package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/pkg/config"
	"github.com/noah-isme/iep-planner-api/pkg/database"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

func sampleStudent(id, name string) *models.StudentProfile {
	return &models.StudentProfile{
		ID:        id,
		Name:      name,
		Age:       9,
		Diagnosis: "ADHD",
		ProgressData: &models.ProgressData{
			WeeklyProgress: models.WeeklyProgress{"day1": {"block1": {Completed: true, Rating: 4}}},
		},
		UpdatedAt: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestMemoryProfileRepositoryUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepository()

	_, err := repo.Get(ctx, "missing")
	assert.True(t, appErrors.IsNotFound(err))

	// update without prior create materializes the record
	require.NoError(t, repo.Put(ctx, sampleStudent("stu-1", "Alex")))
	got, err := repo.Get(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "Alex", got.Name)
	assert.True(t, got.ProgressData.WeeklyProgress["day1"]["block1"].Completed)

	got.Name = "mutated"
	again, _ := repo.Get(ctx, "stu-1")
	assert.Equal(t, "Alex", again.Name)

	require.NoError(t, repo.Delete(ctx, "stu-1"))
	require.NoError(t, repo.Delete(ctx, "never-existed"))
	_, err = repo.Get(ctx, "stu-1")
	assert.True(t, appErrors.IsNotFound(err))

	assert.Error(t, repo.Put(ctx, &models.StudentProfile{Name: "no id"}))
}

func TestMemoryProfileRepositorySearch(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepository()
	require.NoError(t, repo.Put(ctx, sampleStudent("a", "Alex Smith")))
	require.NoError(t, repo.Put(ctx, sampleStudent("b", "Jordan")))

	found, err := repo.Search(ctx, "  alex ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "a", found[0].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryProfileRepositoryConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepository()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Put(ctx, sampleStudent("same", "Alex"))
			_, _ = repo.Get(ctx, "same")
		}()
	}
	wg.Wait()
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func newProfileRepoMock(t *testing.T) (*SQLProfileRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewSQLProfileRepository(sqlxDB), mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestSQLProfileRepositoryPut(t *testing.T) {
	repo, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO student_profiles").
		WithArgs("stu-1", "Alex", 9, "", "ADHD", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	profile := sampleStudent("stu-1", "Alex")
	require.NoError(t, repo.Put(context.Background(), profile))
	assert.False(t, profile.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLProfileRepositoryGet(t *testing.T) {
	repo, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()

	content, err := json.Marshal(sampleStudent("stu-1", "Alex"))
	require.NoError(t, err)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "age", "grade", "diagnosis", "content", "created_at", "updated_at"}).
		AddRow("stu-1", "Alex", 9, "", "ADHD", content, created, created)
	mock.ExpectQuery(`SELECT id, name, age, grade, diagnosis, content, created_at, updated_at FROM student_profiles WHERE id = \$1`).
		WithArgs("stu-1").
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "Alex", got.Name)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, 4, got.ProgressData.WeeklyProgress["day1"]["block1"].Rating)

	mock.ExpectQuery("SELECT id, name").WithArgs("missing").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.Get(context.Background(), "missing")
	assert.True(t, appErrors.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLProfileRepositorySearchAndDelete(t *testing.T) {
	repo, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(`WHERE LOWER\(name\) LIKE \$1`).
		WithArgs("%alex%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age", "grade", "diagnosis", "content", "created_at", "updated_at"}))
	found, err := repo.Search(context.Background(), "Alex")
	require.NoError(t, err)
	assert.Empty(t, found)

	mock.ExpectExec(`DELETE FROM student_profiles WHERE id = \$1`).WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.Delete(context.Background(), "gone"))

	mock.ExpectExec("DELETE FROM student_profiles").WithArgs("x").WillReturnError(errors.New("conn reset"))
	assert.Error(t, repo.Delete(context.Background(), "x"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLProfileRepositorySQLiteRoundTrip(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{Driver: database.DriverSQLite, DSN: filepath.Join(t.TempDir(), "iep.db")})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	repo := NewSQLProfileRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))

	profile := sampleStudent("stu-1", "Alex")
	require.NoError(t, repo.Put(ctx, profile))
	profile.Grade = "4"
	require.NoError(t, repo.Put(ctx, profile))

	got, err := repo.Get(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "4", got.Grade)
	assert.True(t, got.ProgressData.WeeklyProgress["day1"]["block1"].Completed)

	found, err := repo.Search(ctx, "ALE")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, repo.Delete(ctx, "stu-1"))
	_, err = repo.Get(ctx, "stu-1")
	assert.True(t, appErrors.IsNotFound(err))
}

type docServer struct {
	mu   sync.Mutex
	docs map[string]document
}

func (s *docServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Header.Get("Authorization") != "Bearer doc-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch {
	case strings.HasPrefix(r.URL.Path, "/documents/"):
		id := strings.TrimPrefix(r.URL.Path, "/documents/")
		switch r.Method {
		case http.MethodPut:
			var doc document
			_ = json.NewDecoder(r.Body).Decode(&doc)
			s.docs[id] = doc
			_ = json.NewEncoder(w).Encode(doc)
		case http.MethodGet:
			doc, ok := s.docs[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(doc)
		case http.MethodDelete:
			if _, ok := s.docs[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(s.docs, id)
			w.WriteHeader(http.StatusNoContent)
		}
	case r.URL.Path == "/collections/profiles/documents":
		docs := make([]document, 0, len(s.docs))
		for _, d := range s.docs {
			docs = append(docs, d)
		}
		docs = append(docs, document{ID: "foreign", Content: "not json"})
		_ = json.NewEncoder(w).Encode(map[string]any{"documents": docs})
	case r.URL.Path == "/collections/profiles/search":
		docs := make([]document, 0, len(s.docs))
		for _, d := range s.docs {
			docs = append(docs, d)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": docs})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestDocumentProfileRepository(t *testing.T) {
	backend := &docServer{docs: map[string]document{}}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	ctx := context.Background()
	repo := NewDocumentProfileRepository(config.DocumentStoreConfig{APIKey: "doc-key", BaseURL: srv.URL + "/", CollectionID: "profiles"}, srv.Client())

	_, err := repo.Get(ctx, "stu-1")
	assert.True(t, appErrors.IsNotFound(err))

	require.NoError(t, repo.Put(ctx, sampleStudent("stu-1", "Alex")))
	require.NoError(t, repo.Put(ctx, sampleStudent("stu-2", "Jordan")))
	assert.Equal(t, "Alex", backend.docs["stu-1"].Metadata["studentName"])

	got, err := repo.Get(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "ADHD", got.Diagnosis)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := repo.Search(ctx, "jor")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "stu-2", found[0].ID)

	require.NoError(t, repo.Delete(ctx, "stu-1"))
	require.NoError(t, repo.Delete(ctx, "stu-1"))
}

func TestDocumentProfileRepositoryRejectsBadKey(t *testing.T) {
	srv := httptest.NewServer(&docServer{docs: map[string]document{}})
	defer srv.Close()

	repo := NewDocumentProfileRepository(config.DocumentStoreConfig{APIKey: "wrong", BaseURL: srv.URL, CollectionID: "profiles"}, srv.Client())
	err := repo.Put(context.Background(), sampleStudent("stu-1", "Alex"))
	assert.Error(t, err)
	assert.False(t, appErrors.IsNotFound(err))
}

type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string) (*models.StudentProfile, error) { return nil, b.err }
func (b brokenStore) Put(context.Context, *models.StudentProfile) error            { return b.err }
func (b brokenStore) Delete(context.Context, string) error                         { return b.err }
func (b brokenStore) List(context.Context) ([]models.StudentProfile, error)        { return nil, b.err }
func (b brokenStore) Search(context.Context, string) ([]models.StudentProfile, error) {
	return nil, b.err
}
func (b brokenStore) Backend() string { return "document" }

type storeObservation struct {
	op       string
	fellBack bool
}

type recordingObserver struct{ calls []storeObservation }

func (o *recordingObserver) ObserveStore(backend, op string, err error, fellBack bool) {
	o.calls = append(o.calls, storeObservation{op: op, fellBack: fellBack})
}

func TestFailoverProfileRepositoryDegrades(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryProfileRepository()
	observer := &recordingObserver{}
	repo := NewFailoverProfileRepository(brokenStore{err: errors.New("api down")}, local, observer, nil)

	require.NoError(t, repo.Put(ctx, sampleStudent("stu-1", "Alex")))
	got, err := repo.Get(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "Alex", got.Name)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, appErrors.IsNotFound(err))
	require.NoError(t, repo.Delete(ctx, "stu-1"))

	assert.Contains(t, observer.calls, storeObservation{op: "put", fellBack: true})
	assert.Equal(t, "document", repo.Backend())
}

func TestFailoverProfileRepositoryPrefersPrimary(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryProfileRepository()
	local := NewMemoryProfileRepository()
	repo := NewFailoverProfileRepository(primary, local, nil, nil)

	require.NoError(t, repo.Put(ctx, sampleStudent("stu-1", "Alex")))
	_, err := local.Get(ctx, "stu-1")
	assert.True(t, appErrors.IsNotFound(err))

	stale := sampleStudent("stu-1", "Old Alex")
	require.NoError(t, local.Put(ctx, stale))
	require.NoError(t, local.Put(ctx, sampleStudent("stu-2", "Jordan")))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, p := range all {
		if p.ID == "stu-1" {
			assert.Equal(t, "Alex", p.Name)
		}
	}
}

type switchableStore struct {
	*MemoryProfileRepository
	down bool
}

func (s *switchableStore) Get(ctx context.Context, id string) (*models.StudentProfile, error) {
	if s.down {
		return nil, errors.New("api down")
	}
	return s.MemoryProfileRepository.Get(ctx, id)
}

func (s *switchableStore) Put(ctx context.Context, profile *models.StudentProfile) error {
	if s.down {
		return errors.New("api down")
	}
	return s.MemoryProfileRepository.Put(ctx, profile)
}

func (s *switchableStore) List(ctx context.Context) ([]models.StudentProfile, error) {
	if s.down {
		return nil, errors.New("api down")
	}
	return s.MemoryProfileRepository.List(ctx)
}

func TestFailoverProfileRepositoryKeepsOutageWriteAfterRecovery(t *testing.T) {
	ctx := context.Background()
	primary := &switchableStore{MemoryProfileRepository: NewMemoryProfileRepository()}
	local := NewMemoryProfileRepository()
	repo := NewFailoverProfileRepository(primary, local, nil, nil)

	v1 := sampleStudent("stu-1", "v1")
	require.NoError(t, repo.Put(ctx, v1))

	primary.down = true
	v2 := sampleStudent("stu-1", "v2")
	v2.UpdatedAt = v1.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.Put(ctx, v2))

	primary.down = false
	got, err := repo.Get(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Name)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "v2", all[0].Name)

	v3 := sampleStudent("stu-1", "v3")
	v3.UpdatedAt = v2.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.Put(ctx, v3))
	_, err = local.Get(ctx, "stu-1")
	assert.True(t, appErrors.IsNotFound(err))

	got, err = repo.Get(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "v3", got.Name)
}

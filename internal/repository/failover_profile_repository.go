package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/iep-planner-api/internal/models"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

// StoreObserver receives one outcome per primary store call.
type StoreObserver interface {
	ObserveStore(backend, operation string, err error, fellBack bool)
}

// FailoverProfileRepository writes to a primary store and degrades to a secondary one
// when the primary fails. Reads consult the secondary when the primary errors or misses.
type FailoverProfileRepository struct {
	primary   ProfileStore
	secondary ProfileStore
	observer  StoreObserver
	logger    *zap.Logger
}

// NewFailoverProfileRepository wires the two stores. observer may be nil.
func NewFailoverProfileRepository(primary, secondary ProfileStore, observer StoreObserver, logger *zap.Logger) *FailoverProfileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FailoverProfileRepository{primary: primary, secondary: secondary, observer: observer, logger: logger}
}

// Backend names the primary store.
func (r *FailoverProfileRepository) Backend() string { return r.primary.Backend() }

// Get reads both stores and returns the more recently updated copy. A copy written to the
// secondary during an outage outlives the primary's older one until the primary is rewritten.
func (r *FailoverProfileRepository) Get(ctx context.Context, id string) (*models.StudentProfile, error) {
	p, err := r.primary.Get(ctx, id)
	switch {
	case err == nil, appErrors.IsNotFound(err):
		r.observe("get", nil, false)
	default:
		r.degrade("get", err, zap.String("student_id", id))
	}
	local, localErr := r.secondary.Get(ctx, id)
	if localErr != nil && !appErrors.IsNotFound(localErr) {
		if err == nil {
			return p, nil
		}
		return nil, localErr
	}
	if err != nil {
		p = nil
	}
	if localErr != nil {
		local = nil
	}
	if newest := newer(p, local); newest != nil {
		return newest, nil
	}
	return nil, profileNotFound()
}

// Put writes to the primary and falls back to the secondary on error. A successful primary
// write evicts any copy left in the secondary by an earlier outage.
func (r *FailoverProfileRepository) Put(ctx context.Context, profile *models.StudentProfile) error {
	err := r.primary.Put(ctx, profile)
	if err == nil {
		r.observe("put", nil, false)
		if evictErr := r.secondary.Delete(ctx, profile.ID); evictErr != nil && !appErrors.IsNotFound(evictErr) {
			r.logger.Warn("failed to evict fallback profile copy",
				zap.String("student_id", profile.ID),
				zap.Error(evictErr))
		}
		return nil
	}
	r.degrade("put", err, zap.String("student_id", profile.ID))
	return r.secondary.Put(ctx, profile)
}

// Delete removes the profile from both stores.
func (r *FailoverProfileRepository) Delete(ctx context.Context, id string) error {
	err := r.primary.Delete(ctx, id)
	if err != nil {
		r.degrade("delete", err, zap.String("student_id", id))
	} else {
		r.observe("delete", nil, false)
	}
	return r.secondary.Delete(ctx, id)
}

// List merges both stores; for ids present in both the newer copy wins and the primary wins ties.
func (r *FailoverProfileRepository) List(ctx context.Context) ([]models.StudentProfile, error) {
	return r.merge("list", func(s ProfileStore) ([]models.StudentProfile, error) { return s.List(ctx) })
}

// Search merges matches from both stores.
func (r *FailoverProfileRepository) Search(ctx context.Context, name string) ([]models.StudentProfile, error) {
	return r.merge("search", func(s ProfileStore) ([]models.StudentProfile, error) { return s.Search(ctx, name) })
}

func (r *FailoverProfileRepository) merge(op string, fetch func(ProfileStore) ([]models.StudentProfile, error)) ([]models.StudentProfile, error) {
	primary, err := fetch(r.primary)
	if err != nil {
		r.degrade(op, err)
		primary = nil
	} else {
		r.observe(op, nil, false)
	}
	local, err := fetch(r.secondary)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(primary))
	out := make([]models.StudentProfile, 0, len(primary)+len(local))
	for _, p := range primary {
		index[p.ID] = len(out)
		out = append(out, p)
	}
	for _, p := range local {
		i, ok := index[p.ID]
		if !ok {
			out = append(out, p)
			continue
		}
		if p.UpdatedAt.After(out[i].UpdatedAt) {
			out[i] = p
		}
	}
	sortProfiles(out)
	return out, nil
}

// newer returns the copy with the later UpdatedAt; the primary wins ties.
func newer(primary, secondary *models.StudentProfile) *models.StudentProfile {
	switch {
	case primary == nil:
		return secondary
	case secondary == nil:
		return primary
	case secondary.UpdatedAt.After(primary.UpdatedAt):
		return secondary
	default:
		return primary
	}
}

func (r *FailoverProfileRepository) degrade(op string, err error, fields ...zap.Field) {
	r.observe(op, err, true)
	fields = append(fields,
		zap.String("backend", r.primary.Backend()),
		zap.String("operation", op),
		zap.Error(err))
	r.logger.Warn("profile store degraded to in-memory fallback", fields...)
}

func (r *FailoverProfileRepository) observe(op string, err error, fellBack bool) {
	if r.observer != nil {
		r.observer.ObserveStore(r.primary.Backend(), op, err, fellBack)
	}
}

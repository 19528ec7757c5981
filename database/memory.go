package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ortelius/pdvd-assess/model"
)

// MemoryStore keeps applications and assessments in process memory. It backs
// the offline CLI and the server when no database is wanted.
type MemoryStore struct {
	mu           sync.RWMutex
	applications map[string]model.Application
	assessments  map[string]model.Assessment
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		applications: make(map[string]model.Application),
		assessments:  make(map[string]model.Assessment),
	}
}

// CreateApplication validates and stores a new application, setting its key.
func (m *MemoryStore) CreateApplication(_ context.Context, app *model.Application) error {
	if err := app.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.applications {
		if strings.EqualFold(existing.Name, app.Name) {
			return fmt.Errorf("application %s: %w", app.Name, model.ErrConflict)
		}
	}

	if app.Key == "" {
		app.Key = uuid.New().String()
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	m.applications[app.Key] = *app.Clone()
	return nil
}

// GetApplication loads an application by key.
func (m *MemoryStore) GetApplication(_ context.Context, key string) (*model.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.applications[key]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", key, model.ErrNotFound)
	}
	return app.Clone(), nil
}

// ModifyApplication applies mutate to the stored application under the write
// lock, so concurrent changes are never lost. The result is saved only when
// mutate reports a change.
func (m *MemoryStore) ModifyApplication(_ context.Context, key string, mutate func(*model.Application) bool) (*model.Application, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.applications[key]
	if !ok {
		return nil, false, fmt.Errorf("application %s: %w", key, model.ErrNotFound)
	}

	app := stored.Clone()
	if !mutate(app) {
		return app, false, nil
	}
	if err := app.Validate(); err != nil {
		return nil, false, err
	}
	app.UpdatedAt = time.Now().UTC()
	m.applications[key] = *app.Clone()
	return app, true, nil
}

// ListApplications returns every application ordered by name.
func (m *MemoryStore) ListApplications(_ context.Context) ([]*model.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	apps := make([]*model.Application, 0, len(m.applications))
	for _, app := range m.applications {
		apps = append(apps, app.Clone())
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	return apps, nil
}

// SaveAssessment inserts a new assessment or replaces an existing one.
func (m *MemoryStore) SaveAssessment(_ context.Context, assessment *model.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if assessment.Key == "" {
		assessment.Key = uuid.New().String()
	} else if _, ok := m.assessments[assessment.Key]; !ok {
		return fmt.Errorf("assessment %s: %w", assessment.Key, model.ErrNotFound)
	}
	m.assessments[assessment.Key] = *assessment.Clone()
	return nil
}

// GetAssessment loads an assessment by key.
func (m *MemoryStore) GetAssessment(_ context.Context, key string) (*model.Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assessments[key]
	if !ok {
		return nil, fmt.Errorf("assessment %s: %w", key, model.ErrNotFound)
	}
	return a.Clone(), nil
}

// ListAssessmentsByApplication returns an application's assessments, newest first.
func (m *MemoryStore) ListAssessmentsByApplication(_ context.Context, applicationKey string) ([]*model.Assessment, error) {
	return m.filter(func(a *model.Assessment) bool { return a.ApplicationKey == applicationKey },
		func(a, b *model.Assessment) bool { return a.CreatedAt.After(b.CreatedAt) }, 0), nil
}

// ListPendingReviews returns assessments awaiting an analyst, highest scores first.
func (m *MemoryStore) ListPendingReviews(_ context.Context, limit int) ([]*model.Assessment, error) {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}
	return m.filter(func(a *model.Assessment) bool { return a.Status == model.StatusRequiresReview },
		func(a, b *model.Assessment) bool {
			if a.FinalScore != b.FinalScore {
				return a.FinalScore > b.FinalScore
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}, limit), nil
}

func (m *MemoryStore) filter(keep func(*model.Assessment) bool, less func(a, b *model.Assessment) bool, limit int) []*model.Assessment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*model.Assessment{}
	for _, a := range m.assessments {
		if keep(&a) {
			out = append(out, a.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/arangodb/shared"
	"github.com/cenkalti/backoff"
	"github.com/ortelius/pdvd-assess/model"
)

const (
	listApplicationsQuery = `
		FOR a IN application
			SORT a.name ASC
			RETURN a
	`
	assessmentsByApplicationQuery = `
		FOR s IN assessment
			FILTER s.application_key == @key
			SORT s.created_at DESC
			RETURN s
	`
	// Matches nothing when another writer changed the document since it was read.
	replaceApplicationIfUnchangedQuery = `
		FOR a IN application
			FILTER a._key == @key AND a._rev == @rev
			REPLACE a WITH @doc IN application
			RETURN NEW
	`
	// Highest scores first so analysts see the riskiest items at the top.
	pendingReviewsQuery = `
		FOR s IN assessment
			FILTER s.status == @status
			SORT s.final_score DESC, s.created_at ASC
			LIMIT @limit
			RETURN s
	`
)

// DefaultPendingLimit bounds the review queue when no limit is given.
const DefaultPendingLimit = 50

// Store persists applications and assessments in ArangoDB.
type Store struct {
	db           arangodb.Database
	applications arangodb.Collection
	assessments  arangodb.Collection
}

// NewStore wraps an initialized connection.
func NewStore(conn DBConnection) *Store {
	return &Store{
		db:           conn.Database,
		applications: conn.Collections[ApplicationCollection],
		assessments:  conn.Collections[AssessmentCollection],
	}
}

func mapError(err error, what, key string) error {
	switch {
	case shared.IsNotFound(err):
		return fmt.Errorf("%s %s: %w", what, key, model.ErrNotFound)
	case shared.IsConflict(err):
		return fmt.Errorf("%s %s: %w", what, key, model.ErrConflict)
	}
	return fmt.Errorf("%s %s: %w", what, key, err)
}

func queryAll[T any](ctx context.Context, db arangodb.Database, query string, bindVars map[string]interface{}) ([]*T, error) {
	cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	results := []*T{}
	for cursor.HasMore() {
		var doc T
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return nil, err
		}
		results = append(results, &doc)
	}
	return results, nil
}

// CreateApplication validates and stores a new application, setting its key.
func (s *Store) CreateApplication(ctx context.Context, app *model.Application) error {
	if err := app.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	meta, err := s.applications.CreateDocument(ctx, app)
	if err != nil {
		return mapError(err, "application", app.Name)
	}
	app.Key = meta.Key
	return nil
}

// GetApplication loads an application by key.
func (s *Store) GetApplication(ctx context.Context, key string) (*model.Application, error) {
	var app model.Application
	if _, err := s.applications.ReadDocument(ctx, key, &app); err != nil {
		return nil, mapError(err, "application", key)
	}
	return &app, nil
}

// errRevisionChanged marks a lost optimistic-concurrency race.
var errRevisionChanged = errors.New("application revision changed")

// ModifyApplication reads an application, applies mutate and writes it back
// only if no other writer replaced it in between, retrying on a lost race.
func (s *Store) ModifyApplication(ctx context.Context, key string, mutate func(*model.Application) bool) (*model.Application, bool, error) {
	var (
		result  *model.Application
		changed bool
	)

	operation := func() error {
		app, err := s.GetApplication(ctx, key)
		if err != nil {
			return backoff.Permanent(err)
		}
		changed = mutate(app)
		if !changed {
			result = app
			return nil
		}
		if err := app.Validate(); err != nil {
			return backoff.Permanent(err)
		}
		app.UpdatedAt = time.Now().UTC()

		saved, err := queryAll[model.Application](ctx, s.db, replaceApplicationIfUnchangedQuery, map[string]interface{}{
			"key": key,
			"rev": app.Rev,
			"doc": app,
		})
		if err != nil {
			return backoff.Permanent(mapError(err, "application", key))
		}
		if len(saved) == 0 {
			return errRevisionChanged
		}
		result = saved[0]
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(50*time.Millisecond), 5), ctx)
	if err := backoff.RetryNotify(operation, policy, func(err error, d time.Duration) {
		logger.Sugar().Debugf("Retrying update of application %s in %s: %v", key, d, err)
	}); err != nil {
		if errors.Is(err, errRevisionChanged) {
			return nil, false, fmt.Errorf("application %s: %w", key, model.ErrConflict)
		}
		return nil, false, err
	}
	return result, changed, nil
}

// ListApplications returns every application ordered by name.
func (s *Store) ListApplications(ctx context.Context) ([]*model.Application, error) {
	return queryAll[model.Application](ctx, s.db, listApplicationsQuery, nil)
}

// SaveAssessment inserts a new assessment or replaces an existing one.
func (s *Store) SaveAssessment(ctx context.Context, assessment *model.Assessment) error {
	if assessment.Key == "" {
		meta, err := s.assessments.CreateDocument(ctx, assessment)
		if err != nil {
			return mapError(err, "assessment", assessment.CveID)
		}
		assessment.Key = meta.Key
		return nil
	}
	if _, err := s.assessments.ReplaceDocument(ctx, assessment.Key, assessment); err != nil {
		return mapError(err, "assessment", assessment.Key)
	}
	return nil
}

// GetAssessment loads an assessment by key.
func (s *Store) GetAssessment(ctx context.Context, key string) (*model.Assessment, error) {
	var assessment model.Assessment
	if _, err := s.assessments.ReadDocument(ctx, key, &assessment); err != nil {
		return nil, mapError(err, "assessment", key)
	}
	return &assessment, nil
}

// ListAssessmentsByApplication returns an application's assessments, newest first.
func (s *Store) ListAssessmentsByApplication(ctx context.Context, applicationKey string) ([]*model.Assessment, error) {
	return queryAll[model.Assessment](ctx, s.db, assessmentsByApplicationQuery, map[string]interface{}{
		"key": applicationKey,
	})
}

// ListPendingReviews returns assessments awaiting an analyst.
func (s *Store) ListPendingReviews(ctx context.Context, limit int) ([]*model.Assessment, error) {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}
	return queryAll[model.Assessment](ctx, s.db, pendingReviewsQuery, map[string]interface{}{
		"status": string(model.StatusRequiresReview),
		"limit":  limit,
	})
}

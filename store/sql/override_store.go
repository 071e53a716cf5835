package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-searchcore/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultOverrideName is the row consulted when no name is configured.
const DefaultOverrideName = "global"

type OverrideStoreOption func(*OverrideStore)

// WithOverrideName scopes the store to one named override row.
func WithOverrideName(name string) OverrideStoreOption {
	return func(s *OverrideStore) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.name = trimmed
		}
	}
}

func WithOverrideClock(now func() time.Time) OverrideStoreOption {
	return func(s *OverrideStore) {
		if now != nil {
			s.now = now
		}
	}
}

// OverrideStore persists the operator override in search_core_overrides.
type OverrideStore struct {
	db   *bun.DB
	repo repository.Repository[*overrideRecord]
	name string
	now  func() time.Time
}

func NewOverrideStore(db *bun.DB, opts ...OverrideStoreOption) (*OverrideStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*overrideRecord](db, overrideHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid override repository wiring: %w", err)
		}
	}
	store := &OverrideStore{
		db:   db,
		repo: repo,
		name: DefaultOverrideName,
		now:  time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(store)
	}
	return store, nil
}

func (s *OverrideStore) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Override returns nil when no row exists or the stored row is empty.
func (s *OverrideStore) Override(ctx context.Context) (*core.OverrideConfig, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: override store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("name", "=", s.name),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	override := records[0].toDomain()
	if override.IsZero() {
		return nil, nil
	}
	return &override, nil
}

func (s *OverrideStore) SetOverride(ctx context.Context, override core.OverrideConfig) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: override store is not configured")
	}
	if err := override.Validate(); err != nil {
		return err
	}
	now := s.now().UTC()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findOverrideTx(ctx, tx, s.name)
		if err != nil {
			return err
		}
		if record == nil {
			record = &overrideRecord{
				ID:        uuid.NewString(),
				Name:      s.name,
				CreatedAt: now,
				UpdatedAt: now,
			}
			record.apply(override)
			_, createErr := s.repo.CreateTx(ctx, tx, record)
			return createErr
		}
		record.apply(override)
		record.UpdatedAt = now
		if _, updateErr := tx.NewUpdate().
			Model(record).
			Where("id = ?", record.ID).
			Exec(ctx); updateErr != nil {
			return updateErr
		}
		return nil
	})
}

// ClearOverride removes the named row. Clearing an absent override is a no-op.
func (s *OverrideStore) ClearOverride(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: override store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*overrideRecord)(nil)).
		Where("name = ?", s.name).
		Exec(ctx)
	return err
}

func findOverrideTx(ctx context.Context, tx bun.Tx, name string) (*overrideRecord, error) {
	record := &overrideRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/enum"
)

var (
	ErrProfileNameRequired = errors.New("name is required")
	ErrInvalidStation      = errors.New("invalid station")
	ErrInvalidAlertMinutes = errors.New("alert_after_minutes must be > 0")
	ErrKDSProfileNotFound  = errors.New("kds profile not found")
)

// KDSStore defines the DB methods used to write kitchen display profiles.
type KDSStore interface {
	ClearDefaultKDSProfile(ctx context.Context, branchID uuid.UUID) error
	CreateKDSProfile(ctx context.Context, arg database.CreateKDSProfileParams) (database.KdsProfile, error)
	UpdateKDSProfile(ctx context.Context, arg database.UpdateKDSProfileParams) (database.KdsProfile, error)
}

type NewKDSStore func(db database.DBTX) KDSStore

type KDSService struct {
	pool     TxBeginner
	newStore NewKDSStore
}

func NewKDSService(pool TxBeginner, newStore NewKDSStore) *KDSService {
	return &KDSService{pool: pool, newStore: newStore}
}

type KDSProfileInput struct {
	Name              string
	Stations          []string
	OrderTypes        []string
	ShowModifiers     bool
	AlertAfterMinutes int32
	IsDefault         bool
}

// Validate checks the profile fields. Empty station and order-type lists mean
// "show everything".
func (in KDSProfileInput) Validate() error {
	if in.Name == "" {
		return ErrProfileNameRequired
	}
	for _, s := range in.Stations {
		if !enum.IsStation(s) {
			return fmt.Errorf("%w: %s", ErrInvalidStation, s)
		}
	}
	for _, t := range in.OrderTypes {
		if !enum.IsOrderType(t) {
			return fmt.Errorf("%w: %s", ErrInvalidOrderType, t)
		}
	}
	if in.AlertAfterMinutes <= 0 {
		return ErrInvalidAlertMinutes
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// CreateProfile stores a profile. Making it the default clears the branch's
// previous default in the same transaction.
func (s *KDSService) CreateProfile(ctx context.Context, branchID uuid.UUID, in KDSProfileInput) (database.KdsProfile, error) {
	if err := in.Validate(); err != nil {
		return database.KdsProfile{}, err
	}
	return s.withDefault(ctx, branchID, in.IsDefault, func(store KDSStore) (database.KdsProfile, error) {
		return store.CreateKDSProfile(ctx, database.CreateKDSProfileParams{
			BranchID:          branchID,
			Name:              in.Name,
			Stations:          nonNil(in.Stations),
			OrderTypes:        nonNil(in.OrderTypes),
			ShowModifiers:     in.ShowModifiers,
			AlertAfterMinutes: in.AlertAfterMinutes,
			IsDefault:         in.IsDefault,
		})
	})
}

func (s *KDSService) UpdateProfile(ctx context.Context, branchID, id uuid.UUID, in KDSProfileInput) (database.KdsProfile, error) {
	if err := in.Validate(); err != nil {
		return database.KdsProfile{}, err
	}
	profile, err := s.withDefault(ctx, branchID, in.IsDefault, func(store KDSStore) (database.KdsProfile, error) {
		return store.UpdateKDSProfile(ctx, database.UpdateKDSProfileParams{
			ID:                id,
			BranchID:          branchID,
			Name:              in.Name,
			Stations:          nonNil(in.Stations),
			OrderTypes:        nonNil(in.OrderTypes),
			ShowModifiers:     in.ShowModifiers,
			AlertAfterMinutes: in.AlertAfterMinutes,
			IsDefault:         in.IsDefault,
		})
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return database.KdsProfile{}, ErrKDSProfileNotFound
	}
	return profile, err
}

func (s *KDSService) withDefault(ctx context.Context, branchID uuid.UUID, isDefault bool, write func(KDSStore) (database.KdsProfile, error)) (database.KdsProfile, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.KdsProfile{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	if isDefault {
		if err := store.ClearDefaultKDSProfile(ctx, branchID); err != nil {
			return database.KdsProfile{}, fmt.Errorf("clear default profile: %w", err)
		}
	}
	profile, err := write(store)
	if err != nil {
		return database.KdsProfile{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return database.KdsProfile{}, fmt.Errorf("commit tx: %w", err)
	}
	return profile, nil
}

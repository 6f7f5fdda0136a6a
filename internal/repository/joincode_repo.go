package repository

import (
	"fmt"
	"strconv"
	"strings"

	"roboteamup/internal/models"
	"roboteamup/internal/store"
)

// JoinCodeRepository handles row-store operations for class join codes
type JoinCodeRepository struct {
	store *store.Store
}

// NewJoinCodeRepository creates a new join code repository
func NewJoinCodeRepository(s *store.Store) *JoinCodeRepository {
	return &JoinCodeRepository{store: s}
}

// GetJoinCodesByClass retrieves every join code issued for a class
func (r *JoinCodeRepository) GetJoinCodesByClass(classID string) ([]models.JoinCode, error) {
	recs, err := r.store.ReadAll(store.TableClassJoinCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to read join codes: %w", err)
	}
	var out []models.JoinCode
	for _, rec := range recs {
		jc := models.JoinCodeFromRecord(rec)
		if jc.ClassID == classID {
			out = append(out, jc)
		}
	}
	return out, nil
}

// GetJoinCodeByCode retrieves a join code by its redeemable code,
// case-insensitive, nil when not found
func (r *JoinCodeRepository) GetJoinCodeByCode(code string) (*models.JoinCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	recs, err := r.store.ReadAll(store.TableClassJoinCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to read join codes: %w", err)
	}
	for _, rec := range recs {
		jc := models.JoinCodeFromRecord(rec)
		if jc.Code == code {
			return &jc, nil
		}
	}
	return nil, nil
}

// CreateJoinCode appends a new join code row
func (r *JoinCodeRepository) CreateJoinCode(jc models.JoinCode) error {
	if err := r.store.Append(store.TableClassJoinCodes, jc.Record()); err != nil {
		return fmt.Errorf("failed to create join code: %w", err)
	}
	return nil
}

// IncrementUses records one redemption of the code
func (r *JoinCodeRepository) IncrementUses(jc models.JoinCode) error {
	patch := store.Record{"uses": strconv.Itoa(jc.Uses + 1)}
	if _, err := r.store.UpdateByID(store.TableClassJoinCodes, jc.ID, patch); err != nil {
		return fmt.Errorf("failed to update join code: %w", err)
	}
	return nil
}

// Deactivate closes a join code so it can no longer be redeemed
func (r *JoinCodeRepository) Deactivate(id string) (bool, error) {
	ok, err := r.store.UpdateByID(store.TableClassJoinCodes, id, store.Record{"active": models.FormatBool(false)})
	if err != nil {
		return false, fmt.Errorf("failed to deactivate join code: %w", err)
	}
	return ok, nil
}

// DeleteByClass removes every join code issued for a class
func (r *JoinCodeRepository) DeleteByClass(classID string) (int, error) {
	n, err := r.store.DeleteWhere(store.TableClassJoinCodes, func(rec store.Record) bool {
		return rec["classId"] == classID
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete join codes: %w", err)
	}
	return n, nil
}

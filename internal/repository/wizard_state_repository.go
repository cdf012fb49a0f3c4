package repository

import (
	"context"

	"brdgenius-be/internal/pkg/logger"
	"brdgenius-be/internal/repository/contract"
	"brdgenius-be/pkg/wizard"
)

// WizardStateRepository persists whole wizard snapshots, one per session.
// None of its methods fail: storage problems are logged, a corrupt snapshot
// is discarded and the session starts over.
type WizardStateRepository interface {
	Save(ctx context.Context, sessionID string, state wizard.State)
	// Load returns the stored state, or a fresh one and false when nothing usable was stored.
	Load(ctx context.Context, sessionID string) (wizard.State, bool)
	Clear(ctx context.Context, sessionID string)
}

type wizardStateRepository struct {
	store     contract.SnapshotStore
	flow      wizard.Flow
	keyPrefix string
	logger    logger.ILogger
}

func NewWizardStateRepository(
	store contract.SnapshotStore,
	flow wizard.Flow,
	keyPrefix string,
	log logger.ILogger,
) WizardStateRepository {
	return &wizardStateRepository{
		store:     store,
		flow:      flow,
		keyPrefix: keyPrefix,
		logger:    log,
	}
}

func (r *wizardStateRepository) key(sessionID string) string {
	return r.keyPrefix + ":" + sessionID
}

func (r *wizardStateRepository) Save(ctx context.Context, sessionID string, state wizard.State) {
	data, err := wizard.EncodeSnapshot(state)
	if err != nil {
		r.logger.Error("WizardStateRepository", "Failed to encode snapshot", map[string]interface{}{
			"session_id": sessionID,
			"error":      err,
		})
		return
	}
	if err := r.store.Put(ctx, r.key(sessionID), data); err != nil {
		r.logger.Error("WizardStateRepository", "Failed to save snapshot", map[string]interface{}{
			"session_id": sessionID,
			"error":      err,
		})
	}
}

func (r *wizardStateRepository) Load(ctx context.Context, sessionID string) (wizard.State, bool) {
	key := r.key(sessionID)
	data, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Error("WizardStateRepository", "Failed to read snapshot", map[string]interface{}{
			"session_id": sessionID,
			"error":      err,
		})
		return r.flow.Fresh(), false
	}
	if !found {
		return r.flow.Fresh(), false
	}

	state, err := wizard.DecodeSnapshot(data)
	if err != nil {
		r.logger.Warn("WizardStateRepository", "Discarding corrupt snapshot", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		if err := r.store.Delete(ctx, key); err != nil {
			r.logger.Error("WizardStateRepository", "Failed to delete corrupt snapshot", map[string]interface{}{
				"session_id": sessionID,
				"error":      err,
			})
		}
		return r.flow.Fresh(), false
	}

	r.flow.Normalize(&state)
	return state, true
}

func (r *wizardStateRepository) Clear(ctx context.Context, sessionID string) {
	if err := r.store.Delete(ctx, r.key(sessionID)); err != nil {
		r.logger.Error("WizardStateRepository", "Failed to clear snapshot", map[string]interface{}{
			"session_id": sessionID,
			"error":      err,
		})
	}
}

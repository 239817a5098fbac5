// Package state owns the canonical task list and keeps it in sync with its
// persisted copy.
package state

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/log"

	"done/logging"
	"done/models"
	"done/utils"
)

var (
	// ErrStorageUnavailable wraps persistence failures. The operation that
	// returns it has still been applied in memory.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotInitialized is returned by mutations called before Initialize.
	ErrNotInitialized = errors.New("task list not initialized")

	// ErrIDsExhausted is returned by AddTask when the id counter cannot grow.
	ErrIDsExhausted = errors.New("no task ids left")
)

// Manager is the only writer of a TaskList. Every successful mutation is
// written through to the slot before the call returns.
type Manager struct {
	mu          sync.Mutex
	slot        utils.Slot
	logger      *log.Logger
	list        models.TaskList
	initialized bool

	// loadFailed is set when the stored list could not be read. Saving
	// then would replace data this session never saw, so writes are held
	// back until a later Initialize reads the slot successfully.
	loadFailed bool
}

// NewManager returns an uninitialized manager backed by slot. A nil logger
// discards everything.
func NewManager(slot utils.Slot, logger *log.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{slot: slot, logger: logger}
}

// Initialize loads the stored list, or creates and stores an empty one when
// nothing usable is stored. The returned list is valid even when err wraps
// ErrStorageUnavailable.
func (m *Manager) Initialize(ctx context.Context) (models.TaskList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loaded, err := m.slot.Load(ctx)
	m.loadFailed = false
	switch {
	case err == nil:
		m.list = models.Reconcile(&loaded)
		m.initialized = true
		m.logger.Debug("loaded task list", "tasks", len(m.list.Tasks), "nextId", m.list.NextID)
		return m.list.Clone(), nil
	case errors.Is(err, utils.ErrNotFound):
		m.logger.Info("no stored task list, starting empty")
	case errors.Is(err, utils.ErrCorrupt):
		m.logger.Warn("stored task list is corrupt, starting empty", "err", err)
	default:
		m.list = models.Reconcile(nil)
		m.initialized = true
		m.loadFailed = true
		m.logger.Warn("could not read stored task list, continuing in memory without saving", "err", err)
		return m.list.Clone(), fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	m.list = models.Reconcile(nil)
	m.initialized = true
	return m.list.Clone(), m.persist(ctx)
}

// Snapshot returns a copy of the current list.
func (m *Manager) Snapshot() models.TaskList {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.Clone()
}

// Initialized reports whether Initialize has run.
func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// AddTask appends a new incomplete task and returns it.
func (m *Manager) AddTask(ctx context.Context, description string) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return models.Task{}, ErrNotInitialized
	}
	if m.list.NextID == math.MaxInt {
		return models.Task{}, ErrIDsExhausted
	}

	task := m.list.Add(description)
	m.logger.Debug("added task", "id", task.ID)
	return task, m.persist(ctx)
}

// ToggleTask flips the completed flag of task id and returns the resulting
// list. It reports whether the task existed; an unknown id changes nothing
// and is not persisted.
func (m *Manager) ToggleTask(ctx context.Context, id int) (models.TaskList, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return models.TaskList{}, false, ErrNotInitialized
	}

	if !m.list.Toggle(id) {
		m.logger.Debug("toggle of unknown task ignored", "id", id)
		return m.list.Clone(), false, nil
	}
	m.logger.Debug("toggled task", "id", id)
	err := m.persist(ctx)
	return m.list.Clone(), true, err
}

// DeleteTask removes task id and returns the resulting list. It reports
// whether a task was removed; an unknown id changes nothing and is not
// persisted.
func (m *Manager) DeleteTask(ctx context.Context, id int) (models.TaskList, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return models.TaskList{}, false, ErrNotInitialized
	}

	if !m.list.Delete(id) {
		m.logger.Debug("delete of unknown task ignored", "id", id)
		return m.list.Clone(), false, nil
	}
	m.logger.Debug("deleted task", "id", id)
	err := m.persist(ctx)
	return m.list.Clone(), true, err
}

// persist must be called with mu held.
func (m *Manager) persist(ctx context.Context) error {
	if m.loadFailed {
		m.logger.Warn("stored task list was never read, change kept in memory")
		return fmt.Errorf("%w: stored task list could not be read", ErrStorageUnavailable)
	}
	if err := m.slot.Save(ctx, m.list); err != nil {
		m.logger.Warn("could not save task list, change kept in memory", "err", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

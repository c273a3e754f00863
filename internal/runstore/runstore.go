// Package runstore persists analysis run history and per-row risk scores.
package runstore

import (
	"sync"

	"github.com/huangsam/prlens/internal/contract"
)

// RunStoreManager guards access to the configured run store instance.
type RunStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runs         contract.RunStore
}

var _ contract.StoreManager = &RunStoreManager{} // Compile-time check

// GetRunStore returns the configured RunStore, or nil when tracking is off.
func (mgr *RunStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}

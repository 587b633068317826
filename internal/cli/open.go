package cli

import (
	"fmt"
	"os"

	"github.com/roach88/progcdc/internal/config"
	"github.com/roach88/progcdc/internal/store"
)

// openTracking opens the tracking store. Read-only commands pass mustExist so
// a mistyped path fails instead of creating an empty database.
func openTracking(cfg config.Config, mustExist bool) (*store.Store, error) {
	path := cfg.Tracking.Path
	if mustExist {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("tracking database not found: %s", path))
		}
	}

	st, err := store.Open(path, store.WithCollection(cfg.Tracking.Collection))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open tracking database", err)
	}
	return st, nil
}

package pipeline

import (
	"github.com/gofrs/flock"

	"extpack/internal/config"
	"extpack/internal/services"
)

// acquireLock takes the project build lock without waiting. The returned
// function releases it.
func acquireLock(cfg *config.Config) (func() error, error) {
	if err := cfg.EnsureStateDir(); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, StageLock, "prepare", "", err)
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, StageLock, "acquire", cfg.LockPath(), err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrBusy, StageLock, "acquire", "another build holds "+cfg.LockPath(), nil)
	}
	return lock.Unlock, nil
}

package memory

import (
	"github.com/m-mizutani/hazel/pkg/config"
)

// GetConfig resolves a single setting through the precedence chain
func (u *UseCase) GetConfig(key config.Key) (any, error) {
	return u.cfg.Get(key)
}

// SetConfig installs a runtime override and returns the previously
// effective value. The override lasts until the process exits.
func (u *UseCase) SetConfig(key config.Key, value any) (any, error) {
	return u.cfg.Set(key, value)
}

// AllConfig returns every recognized setting with its effective value
func (u *UseCase) AllConfig() map[config.Key]any {
	return u.cfg.GetAll()
}

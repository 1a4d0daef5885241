package provider

import (
	"errors"

	"github.com/fioncat/txtcrawl/types"
)

func Load(cfg *types.Config) (types.Dialer, error) {
	if cfg.Remote == nil || cfg.Remote.Server == "" {
		return nil, errors.New("remote server could not be empty")
	}
	return newFtp(cfg.Remote), nil
}

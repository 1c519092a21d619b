package module

import (
	"github.com/go-playground/validator/v10"

	"backstitch/internal/platform/config"
	"backstitch/internal/platform/logger"
)

// Options holds configuration options for the slugs module
type Options struct {
	// DryRun resolves and reports without writing
	DryRun bool

	// MaxPosts caps how many posts one invocation processes; 0 = unlimited.
	// The remainder is picked up by the next run since the scan always restarts
	MaxPosts int `validate:"gte=0"`
}

// FromConfig reads the slugs options from config with BACKSTITCH_ prefix
func FromConfig(cfg config.Conf) Options {
	bs := cfg.Prefix("BACKSTITCH_")
	opts := Options{
		DryRun:   bs.MayBool("DRY_RUN", false),
		MaxPosts: bs.MayInt("MAX_POSTS", 0),
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(opts); err != nil {
		logger.Get().Panic().Err(err).Msg("invalid slugs options")
	}
	return opts
}

package main

import (
	"sync"

	"github.com/sukalov/hymnarium/internal/config"
	"github.com/sukalov/hymnarium/internal/logger"
	"github.com/sukalov/hymnarium/internal/media"
)

// commandContext loads the configuration lazily so commands that work on
// local input run without any environment.
type commandContext struct {
	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
		c.config = cfg
	})
	return c.config, c.configErr
}

// mediaClient builds the signing R2 client from the configuration.
func (c *commandContext) mediaClient() (*media.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	signer, err := newSigner(cfg)
	if err != nil {
		return nil, err
	}
	return media.NewClient(signer, credentials(cfg)), nil
}

func newSigner(cfg *config.Config) (media.Signer, error) {
	mode, err := media.ParsePayloadMode(cfg.R2.SigningMode)
	if err != nil {
		return media.Signer{}, err
	}
	return media.Signer{Bucket: cfg.R2.Bucket, Mode: mode}, nil
}

func credentials(cfg *config.Config) media.Credentials {
	return media.Credentials{
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		AccountID:       cfg.R2.AccountID,
	}
}

package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/gao-dev/gao/internal/agentrunner"
	"github.com/gao-dev/gao/internal/config"
)

// newAPIClient builds an Anthropic client from configuration. The key
// comes from the environment or the config file.
func newAPIClient(cfg *config.Config) (*agentrunner.Client, error) {
	apiKey, err := config.GetAPIKey(cfg)
	if err != nil && !cfg.Anthropic.UseBedrock {
		return nil, err
	}

	client, err := agentrunner.NewClient(agentrunner.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return client, nil
}

package config

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ResolveAPIKey returns the provider API key, pulling it from SSM Parameter
// Store in prod when the config/env value is empty.
func (p *ProviderConfig) ResolveAPIKey(env string) string {
	if p.APIKey != "" || env != "prod" {
		return p.APIKey
	}
	return getParameterStoreValue(p.SSMParameter, true)
}

// ResolveSecret returns the cron shared secret, falling back to SSM in prod.
func (c *CronConfig) ResolveSecret(env string) string {
	if c.Secret != "" || env != "prod" {
		return c.Secret
	}
	return getParameterStoreValue(c.SSMParameter, true)
}

// resolveSecret prefers the locally configured value and consults Parameter
// Store under the given name otherwise.
func resolveSecret(value, parameterName string) string {
	if value != "" {
		return value
	}
	return getParameterStoreValue(parameterName, true)
}

func getParameterStoreValue(parameterName string, decrypt bool) string {
	if parameterName == "" {
		return ""
	}

	baseCtx := context.Background()
	ctxWithTimeout, cancel := context.WithTimeout(baseCtx, 5*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctxWithTimeout)
	if err != nil {
		return ""
	}

	client := ssm.NewFromConfig(cfg)

	input := &ssm.GetParameterInput{
		Name:           &parameterName,
		WithDecryption: &decrypt,
	}

	result, err := client.GetParameter(ctxWithTimeout, input)
	if err != nil {
		return ""
	}

	if result.Parameter.Value == nil {
		return ""
	}

	return *result.Parameter.Value
}

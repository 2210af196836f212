package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"eventdesk/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if err := checkConfig(c); err != nil {
		return nil, err
	}

	return c, nil
}

// checkConfig rejects settings the server would only trip over at request
// time.
func checkConfig(c *types.Config) error {
	base, err := url.Parse(c.APIBaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) url, got %q", c.APIBaseURL)
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")

	if strings.EqualFold(strings.TrimSpace(c.AuthTokenCheck), "jwks") && c.JWKSURL == "" {
		return errors.New("set JWKS_URL when AUTH_TOKEN_CHECK=jwks")
	}

	for name, rate := range map[string]float64{
		"GST_RATE":            c.GSTRate,
		"PROCESSING_FEE_RATE": c.ProcessingFeeRate,
	} {
		if rate < 0 || rate >= 1 {
			return fmt.Errorf("%s must be a fraction in [0, 1), got %v", name, rate)
		}
	}
	if c.TokenUnitPrice <= 0 {
		return fmt.Errorf("TOKEN_UNIT_PRICE must be positive, got %v", c.TokenUnitPrice)
	}

	if c.SessionMaxAgeSec <= 0 {
		c.SessionMaxAgeSec = 7 * 24 * 60 * 60
	}

	return nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}

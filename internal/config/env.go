package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

func (c Config) MongoEnabled() bool     { return c.MongoURI != "" }
func (c Config) EvolutionEnabled() bool { return c.EvolutionAPIURL != "" }
func (c Config) TemporalEnabled() bool  { return c.TemporalHost != "" }

func (c Config) R2Enabled() bool {
	return c.R2Endpoint != "" || c.R2Bucket != ""
}

// Validate reports settings that only make sense together.
func (c Config) Validate() error {
	var errs []error
	if c.MongoEnabled() && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when MONGO_URI is set"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if c.R2Enabled() {
		var missing []string
		for key, value := range map[string]string{
			"R2_ENDPOINT":    c.R2Endpoint,
			"R2_ACCESS_KEY":  c.R2AccessKey,
			"R2_SECRET_KEY":  c.R2SecretKey,
			"R2_BUCKET_NAME": c.R2Bucket,
		} {
			if value == "" {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			errs = append(errs, fmt.Errorf("receipt archive needs %s", strings.Join(missing, ", ")))
		}
	}
	return errors.Join(errs...)
}


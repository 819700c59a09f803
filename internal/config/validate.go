package config

import (
	"errors"
	"net/url"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Host, validation.Required, is.Host),
		validation.Field(&c.Environment, validation.Required),
		validation.Field(&c.HTTP),
		validation.Field(&c.Status),
		validation.Field(&c.Metrics),
		validation.Field(&c.Platform),
		validation.Field(&c.App),
	)
}

// Validate checks the status polling settings.
func (s StatusConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Timeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&s.Concurrency, validation.Min(0)),
		validation.Field(&s.StreamInterval, validation.Required, validation.Min(time.Second)),
	)
}

// Validate checks the server timeouts.
func (h HTTPConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.ReadTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&h.WriteTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&h.IdleTimeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

// Prometheus metric and label name syntax.
var (
	metricNameRe = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	labelNameRe  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Request metric labels that const labels may not shadow.
var reservedLabels = map[string]struct{}{"method": {}, "route": {}, "status_code": {}}

// Validate checks metric naming and bucket layout.
func (m MetricsConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Namespace, validation.Match(metricNameRe)),
		validation.Field(&m.Subsystem, validation.Match(metricNameRe)),
		validation.Field(&m.Buckets, validation.By(increasingBuckets)),
		validation.Field(&m.ConstLabels, validation.By(constLabelNames)),
	)
}

// Validate checks the platform description.
func (p PlatformConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Services, validation.By(uniqueServiceKeys)),
	)
}

// Validate checks a single service descriptor.
func (s ServiceConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Key, validation.Required),
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.URL, validation.Required, validation.By(httpURL)),
	)
}

// Validate checks the sample service identity.
func (a AppConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.Version, validation.Required),
	)
}

func uniqueServiceKeys(value interface{}) error {
	services, ok := value.([]ServiceConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a list of services")
	}
	seen := make(map[string]struct{}, len(services))
	for _, s := range services {
		if _, dup := seen[s.Key]; dup {
			return validation.NewError("validation_duplicate_key", "duplicate service key "+s.Key)
		}
		seen[s.Key] = struct{}{}
	}
	return nil
}

func httpURL(value interface{}) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return validation.NewError("validation_invalid_url", "must be an absolute http(s) URL")
	}
	return nil
}

func increasingBuckets(value interface{}) error {
	buckets, _ := value.([]float64)
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return validation.NewError("validation_bucket_order", "buckets must be strictly increasing")
		}
	}
	return nil
}

func constLabelNames(value interface{}) error {
	labels, _ := value.(map[string]string)
	for name := range labels {
		if !labelNameRe.MatchString(name) {
			return validation.NewError("validation_label_name", "invalid label name "+name)
		}
		if _, ok := reservedLabels[name]; ok {
			return validation.NewError("validation_label_reserved", "reserved label name "+name)
		}
	}
	return nil
}

// Package platform holds the static description of the platform the
// dashboard reports on.
package platform

import (
	"bytes"
	"encoding/json"

	"github.com/okian/comind/internal/config"
)

// ServiceDescriptor identifies one upstream service. Descriptors are
// built at startup and never change afterwards.
type ServiceDescriptor struct {
	Key         string `json:"-"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Services is an ordered set of descriptors. It encodes as a JSON object
// keyed by descriptor key, in declaration order.
type Services []ServiceDescriptor

// Keys returns the descriptor keys in order.
func (s Services) Keys() []string {
	keys := make([]string, len(s))
	for i, d := range s {
		keys[i] = d.Key
	}
	return keys
}

// MarshalJSON implements json.Marshaler.
func (s Services) MarshalJSON() ([]byte, error) {
	return EncodeOrdered(len(s), func(i int) (string, any) { return s[i].Key, s[i] })
}

// Platform is the static platform configuration.
type Platform struct {
	Name        string                       `json:"name"`
	Version     string                       `json:"version"`
	Environment string                       `json:"environment"`
	Services    Services                     `json:"services"`
	Credentials map[string]map[string]string `json:"credentials"`
}

// FromConfig builds the platform description from loaded configuration.
func FromConfig(cfg *config.Config) Platform {
	services := make(Services, 0, len(cfg.Platform.Services))
	for _, s := range cfg.Platform.Services {
		services = append(services, ServiceDescriptor{
			Key:         s.Key,
			Name:        s.Name,
			URL:         s.URL,
			Description: s.Description,
			Icon:        s.Icon,
		})
	}
	return Platform{
		Name:        cfg.Platform.Name,
		Version:     cfg.Platform.Version,
		Environment: cfg.Environment,
		Services:    services,
		Credentials: cfg.Platform.Credentials,
	}
}

// EncodeOrdered writes n key/value pairs as a JSON object, keeping the
// order in which entry returns them.
func EncodeOrdered(n int, entry func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		key, value := entry(i)
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

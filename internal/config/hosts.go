package config

import "github.com/klauern/boxsync/internal/model"

// HostStore persists the host list inside the configuration file.
type HostStore struct {
	cfg *Config
}

// HostStore returns a store backed by this configuration.
func (c *Config) HostStore() *HostStore {
	return &HostStore{cfg: c}
}

// Load returns a copy of the persisted host list.
func (s *HostStore) Load() ([]model.Host, error) {
	return append([]model.Host(nil), s.cfg.Hosts.List...), nil
}

// Save replaces the persisted host list and writes the whole file.
func (s *HostStore) Save(hosts []model.Host) error {
	s.cfg.Hosts.List = append([]model.Host{}, hosts...)
	return s.cfg.Save()
}

// Override returns the manual single-host override, if one is set.
func (s *HostStore) Override() (model.Host, bool) {
	if s.cfg.Hosts.Override == "" {
		return model.Host{}, false
	}
	return model.NewHost("override", s.cfg.Hosts.Override), true
}

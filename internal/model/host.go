package model

import (
	"fmt"
	"strings"

	"github.com/klauern/boxsync/internal/errs"
)

// Host is a named remote device that accepts uploads and serves downloads.
type Host struct {
	Name    string `yaml:"name" toml:"name" json:"name"`
	Address string `yaml:"address" toml:"address" json:"address"`
}

// NewHost returns a host with surrounding whitespace trimmed from both fields.
func NewHost(name, address string) Host {
	return Host{
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
	}
}

// Equal reports whether two hosts have the same name and address.
// Hosts carry no identifier, so this is their identity.
func (h Host) Equal(other Host) bool {
	return h.Name == other.Name && h.Address == other.Address
}

// String returns the host formatted as name(address).
func (h Host) String() string {
	return fmt.Sprintf("%s(%s)", h.Name, h.Address)
}

// Validate requires a non-blank name and address.
func (h Host) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return &errs.ValidationError{Field: "name", Message: "host name cannot be empty"}
	}
	if strings.TrimSpace(h.Address) == "" {
		return &errs.ValidationError{Field: "address", Message: "host address cannot be empty"}
	}
	return nil
}

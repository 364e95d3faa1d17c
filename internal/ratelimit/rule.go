package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRule is returned when a rule cannot be enforced.
var ErrInvalidRule = errors.New("invalid rate limit rule")

// Rule configures a sliding window limit with a cooldown block.
type Rule struct {
	// MaxRequests is the number of requests accepted inside Window.
	MaxRequests int
	// Window is the length of the trailing interval requests are counted in.
	Window time.Duration
	// BlockDuration is how long a client is rejected once it exceeds MaxRequests.
	// Zero means the client is only rejected while the window is full.
	BlockDuration time.Duration
}

// Validate reports whether the rule can be enforced.
func (r Rule) Validate() error {
	switch {
	case r.MaxRequests <= 0:
		return fmt.Errorf("%w: max requests must be positive, got %d", ErrInvalidRule, r.MaxRequests)
	case r.Window <= 0:
		return fmt.Errorf("%w: window must be positive, got %s", ErrInvalidRule, r.Window)
	case r.BlockDuration < 0:
		return fmt.Errorf("%w: block duration must not be negative, got %s", ErrInvalidRule, r.BlockDuration)
	}

	return nil
}

// Preset names a rule shared by a family of endpoints.
type Preset string

const (
	// PresetAuth guards credential checks.
	PresetAuth Preset = "auth"
	// PresetAPI guards authenticated and write endpoints.
	PresetAPI Preset = "api"
	// PresetPublic guards anonymous read endpoints.
	PresetPublic Preset = "public"
)

// Presets holds the default rule for every preset.
var Presets = map[Preset]Rule{
	PresetAuth:   {MaxRequests: 5, Window: 15 * time.Minute, BlockDuration: 30 * time.Minute},
	PresetAPI:    {MaxRequests: 100, Window: time.Minute, BlockDuration: 5 * time.Minute},
	PresetPublic: {MaxRequests: 200, Window: time.Minute, BlockDuration: 2 * time.Minute},
}

// Messages are the human readable rejection messages per preset.
var Messages = map[Preset]string{
	PresetAuth:   "Too many authentication attempts, please try again later.",
	PresetAPI:    "Too many requests, please slow down.",
	PresetPublic: "Too many requests from this address, please try again later.",
}

// RuleFor returns the rule of a preset, falling back to the API preset for unknown names.
func RuleFor(p Preset) Rule {
	if rule, ok := Presets[p]; ok {
		return rule
	}

	return Presets[PresetAPI]
}

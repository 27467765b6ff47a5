// Package options holds the runtime options of a GraphQL Lambda server
// and the merge of caller supplied options over the defaults.
package options

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TracingHeader is the request header that switches tracing on
// when the tracing mode is HTTPHeader.
const TracingHeader = "x-apollo-tracing"

// Mode selects when tracing data is collected.
type Mode string

const (
	// Enabled collects tracing data for every request.
	Enabled Mode = "enabled"
	// Disabled never collects tracing data.
	Disabled Mode = "disabled"
	// HTTPHeader collects tracing data when the request carries
	// the TracingHeader, whatever its value.
	HTTPHeader Mode = "http-header"
)

// Tracing is the tracing setting. The zero value means unset.
type Tracing struct {
	Mode Mode `json:"mode"`
}

// Bool returns the tracing setting equivalent to a plain boolean.
func Bool(enabled bool) Tracing {
	if enabled {
		return Tracing{Mode: Enabled}
	}
	return Tracing{Mode: Disabled}
}

// IsSet reports whether t carries a mode.
func (t Tracing) IsSet() bool {
	return t.Mode != ""
}

// Enabled decides whether a request is traced. hasHeader reports
// whether the request carries the named header.
func (t Tracing) Enabled(hasHeader func(name string) bool) bool {
	switch t.Mode {
	case Enabled:
		return true
	case HTTPHeader:
		return hasHeader != nil && hasHeader(TracingHeader)
	default:
		return false
	}
}

// UnmarshalText accepts a mode name or a boolean.
func (t *Tracing) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))

	switch Mode(s) {
	case Enabled, Disabled, HTTPHeader:
		t.Mode = Mode(s)
		return nil
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return errors.Errorf("invalid tracing setting: %q", string(text))
	}

	*t = Bool(b)

	return nil
}

// MarshalText renders the mode name.
func (t Tracing) MarshalText() ([]byte, error) {
	return []byte(t.Mode), nil
}

// UnmarshalJSON accepts `true`, `false`, `"enabled"` or `{"mode": "enabled"}`.
func (t *Tracing) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*t = Bool(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return t.UnmarshalText([]byte(s))
	}

	var obj struct {
		Mode string `json:"mode"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.Wrap(err, "invalid tracing setting")
	}

	return t.UnmarshalText([]byte(obj.Mode))
}

// Options are the runtime options of a server.
type Options struct {
	Tracing Tracing `json:"tracing"`
}

// Default returns the default options.
func Default() Options {
	return Options{
		Tracing: Tracing{Mode: HTTPHeader},
	}
}

// Merge lays the set fields of override over Default().
func Merge(override *Options) Options {
	merged := Default()

	if override == nil {
		return merged
	}

	if override.Tracing.IsSet() {
		merged.Tracing = override.Tracing
	}

	return merged
}

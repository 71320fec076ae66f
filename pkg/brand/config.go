package brand

import (
	"encoding/json"

	"github.com/matzehuels/brandkit/pkg/canvas"
	"github.com/matzehuels/brandkit/pkg/errors"
)

// Config is an ordered collection of overlay elements owned by one user.
// List order defines paint order: later elements draw on top. Element IDs
// are unique within a config, and reordering requires an explicit MoveTo;
// no operation reorders implicitly.
//
// The zero value is an empty, usable config.
type Config struct {
	elements []*Element
}

// NewConfig creates an empty config.
func NewConfig() *Config {
	return &Config{}
}

// Len returns the number of elements.
func (c *Config) Len() int {
	return len(c.elements)
}

// Elements returns the elements in paint order. The slice is a copy; the
// pointed-to elements are shared, so mutating an element mutates the config.
func (c *Config) Elements() []*Element {
	out := make([]*Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// Find returns the element with the given ID, or nil if absent.
func (c *Config) Find(id string) *Element {
	for _, e := range c.elements {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// IndexOf returns the paint-order index of the element with the given ID,
// or -1 if absent.
func (c *Config) IndexOf(id string) int {
	for i, e := range c.elements {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Add appends an element at the top of the paint order.
// It rejects elements that fail validation or reuse an existing ID.
func (c *Config) Add(e *Element) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if c.Find(e.ID) != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "duplicate element id %s", e.ID)
	}
	e.Rotation = canvas.NormalizeDegrees(e.Rotation)
	c.elements = append(c.elements, e)
	return nil
}

// Remove deletes the element with the given ID, preserving the order of
// the remaining elements. Returns false if no such element exists.
func (c *Config) Remove(id string) bool {
	i := c.IndexOf(id)
	if i < 0 {
		return false
	}
	c.elements = append(c.elements[:i], c.elements[i+1:]...)
	return true
}

// MoveTo reorders the element with the given ID to paint-order index idx.
// This is the only way to change paint order.
func (c *Config) MoveTo(id string, idx int) error {
	i := c.IndexOf(id)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "no element with id %s", id)
	}
	if idx < 0 || idx >= len(c.elements) {
		return errors.New(errors.ErrCodeInvalidInput, "index %d out of range [0,%d)", idx, len(c.elements))
	}
	e := c.elements[i]
	c.elements = append(c.elements[:i], c.elements[i+1:]...)
	rest := append([]*Element{}, c.elements[idx:]...)
	c.elements = append(append(c.elements[:idx], e), rest...)
	return nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := &Config{elements: make([]*Element, len(c.elements))}
	for i, e := range c.elements {
		out.elements[i] = e.Clone()
	}
	return out
}

// MarshalJSON encodes the config as an ordered JSON array of elements,
// the persisted kit format.
func (c *Config) MarshalJSON() ([]byte, error) {
	if c.elements == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.elements)
}

// UnmarshalJSON decodes a persisted kit, rejecting any malformed record.
// Use Decode for the lenient path that drops bad records individually.
func (c *Config) UnmarshalJSON(data []byte) error {
	var elems []*Element
	if err := json.Unmarshal(data, &elems); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse kit config")
	}
	rebuilt := &Config{}
	for _, e := range elems {
		if err := rebuilt.Add(e); err != nil {
			return err
		}
	}
	c.elements = rebuilt.elements
	return nil
}

// Dropped records one element that could not be loaded from a persisted
// config, with the position it occupied and the reason it was rejected.
type Dropped struct {
	Index  int
	ID     string
	Reason error
}

// Decode parses a persisted kit config leniently: malformed element
// records are dropped individually and reported, and the remainder of the
// config loads in its original order. Only a payload that is not a JSON
// array at all is a hard error.
func Decode(data []byte) (*Config, []Dropped, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "kit config is not a JSON array")
	}

	cfg := &Config{}
	var dropped []Dropped
	for i, r := range raw {
		var e Element
		if err := json.Unmarshal(r, &e); err != nil {
			dropped = append(dropped, Dropped{Index: i, Reason: errors.Wrap(errors.ErrCodeInvalidConfig, err, "record %d", i)})
			continue
		}
		if err := cfg.Add(&e); err != nil {
			dropped = append(dropped, Dropped{Index: i, ID: e.ID, Reason: err})
		}
	}
	return cfg, dropped, nil
}

// Package fixture reads property lists written as YAML and exports decoded
// lists for inspection.
//
// A fixture is a YAML sequence of entries:
//
//	# props.yaml
//	- identifier: SESSION_EXPIRY_INTERVAL
//	  value: 30
//	- identifier: 38
//	  name: region
//	  value: eu-west
//
// The identifier is either the numeric MQTT5 property identifier or its
// display name. name is only meaningful for USER_PROPERTY.
package fixture

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"mqprops/internal/protocol"
)

// LoadError describes a fixture that could not be turned into a property list.
type LoadError struct {
	File    string
	Index   int
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Index >= 0 {
		msg = fmt.Sprintf("entry %d: %s", e.Index, msg)
	}
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

type entry struct {
	Identifier string    `yaml:"identifier"`
	Name       string    `yaml:"name,omitempty"`
	Value      yaml.Node `yaml:"value"`
}

// value returns the entry's value for a property of the given wire type.
// Scalars given to string properties keep their literal text, so 123 and
// true are read as "123" and "true".
func (e entry) value(wire protocol.WireType) (any, error) {
	node := e.Value
	if (wire == protocol.WireString || wire == protocol.WireStringPair) &&
		node.Kind == yaml.ScalarNode && node.ShortTag() != "!!binary" {
		return node.Value, nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Parse converts a YAML fixture into a property list with canonical value types.
func Parse(data []byte) ([]protocol.Property, error) {
	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, &LoadError{Index: -1, Message: "failed to parse YAML", Cause: err}
	}

	props := make([]protocol.Property, 0, len(entries))
	for i, e := range entries {
		id, err := resolveIdentifier(e.Identifier)
		if err != nil {
			return nil, &LoadError{Index: i, Message: "bad identifier", Cause: err}
		}
		if e.Value.Kind == 0 || e.Value.ShortTag() == "!!null" {
			return nil, &LoadError{Index: i, Message: "value is required"}
		}
		if e.Name != "" && id.WireType() != protocol.WireStringPair {
			return nil, &LoadError{Index: i, Message: fmt.Sprintf("name is not allowed for %s", id)}
		}

		value, err := e.value(id.WireType())
		if err != nil {
			return nil, &LoadError{Index: i, Message: "bad value", Cause: err}
		}
		p, err := protocol.Property{ID: id, Name: e.Name, Value: value}.Normalize()
		if err != nil {
			return nil, &LoadError{Index: i, Message: "bad value", Cause: err}
		}
		props = append(props, p)
	}
	return props, nil
}

// Load reads and parses the fixture at path.
func Load(path string) ([]protocol.Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Index: -1, Message: "failed to read file", Cause: err}
	}

	props, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
		}
		return nil, err
	}
	return props, nil
}

func resolveIdentifier(s string) (protocol.MqttProperty, error) {
	if s == "" {
		return 0, fmt.Errorf("identifier is required")
	}
	if id, ok := protocol.PropertyByName(s); ok {
		return id, nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%q is neither a property name nor a byte", s)
	}
	id := protocol.MqttProperty(n)
	if id.WireType() == protocol.Unknown {
		return 0, fmt.Errorf("%w: %d", protocol.ErrUnknownPropertyIdentifier, n)
	}
	return id, nil
}

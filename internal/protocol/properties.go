package protocol

import (
	"fmt"
	"math"
	"strings"
)

// Property is one entry of an MQTT5 property list. Value holds a byte,
// uint16, uint32 or string according to the identifier's wire type; Name is
// only used by USER_PROPERTY.
type Property struct {
	ID    MqttProperty
	Name  string
	Value any
}

func (p Property) String() string {
	value := p.Value
	if b, ok := value.([]byte); ok {
		value = string(b)
	}
	if p.ID.WireType() == WireStringPair {
		return fmt.Sprintf("%s:%s:%v", p.ID, p.Name, value)
	}
	return fmt.Sprintf("%s:%v", p.ID, value)
}

// Normalize converts Value to the Go type DecodeProperties produces for the
// identifier's wire type, so normalized lists compare equal to decoded ones.
func (p Property) Normalize() (Property, error) {
	var err error
	switch p.ID.WireType() {
	case WireByte:
		var x uint64
		x, err = uintValue(p.Value, math.MaxUint8)
		p.Value = byte(x)
	case WireUInt16:
		var x uint64
		x, err = uintValue(p.Value, math.MaxUint16)
		p.Value = uint16(x)
	case WireUInt32, WireVarByteInt:
		var x uint64
		x, err = uintValue(p.Value, math.MaxUint32)
		p.Value = uint32(x)
	case WireString, WireStringPair:
		p.Value, err = stringValue(p.Value)
	default:
		err = ErrUnknownPropertyIdentifier
	}
	if err != nil {
		return p, fmt.Errorf("%s: %w", p.ID, err)
	}
	return p, nil
}

// EncodeProperties serializes props as a property length followed by the
// entries in order. An empty list encodes as a single zero byte. Nothing is
// returned if any entry fails to encode.
func EncodeProperties(props []Property) ([]byte, error) {
	var payload []byte
	for i, p := range props {
		wire := p.ID.WireType()
		if wire == Unknown {
			return nil, &EncodeError{Index: i, ID: p.ID, Err: ErrUnknownPropertyIdentifier}
		}

		var err error
		payload = append(payload, byte(p.ID))
		payload, err = wireCodecs[wire].encode(payload, p)
		if err != nil {
			return nil, &EncodeError{Index: i, ID: p.ID, Err: err}
		}
	}

	b, err := VarByteInt(len(payload)).appendTo(make([]byte, 0, len(payload)+maxVarByteIntLen))
	if err != nil {
		return nil, &EncodeError{Index: -1, Err: err}
	}
	return append(b, payload...), nil
}

// DecodeProperties parses the property block at the start of b. It returns
// the entries and the length of the block; bytes past the block are not
// read. On error the entries decoded so far are returned together with the
// offset of the first byte that was not consumed.
func DecodeProperties(b []byte) ([]Property, int, error) {
	var propLen VarByteInt
	rBytes, err := propLen.decode(b)
	if err != nil {
		return nil, 0, &DecodeError{Offset: 0, Length: true, Err: err}
	}

	boundary := rBytes + int(propLen)
	if boundary > len(b) {
		return nil, rBytes, &DecodeError{Offset: rBytes, Length: true, Err: ErrTruncatedPayload}
	}
	b = b[:boundary]

	var props []Property
	offset := rBytes
	for offset < boundary {
		p := Property{ID: MqttProperty(b[offset])}
		wire := p.ID.WireType()
		if wire == Unknown {
			return props, offset, &DecodeError{Offset: offset, ID: p.ID, Err: ErrUnknownPropertyIdentifier}
		}

		n, err := wireCodecs[wire].decode(b[offset+1:], &p)
		if err != nil {
			return props, offset, &DecodeError{Offset: offset, ID: p.ID, Err: err}
		}
		props = append(props, p)
		offset += 1 + n
	}

	return props, boundary, nil
}

// FormatProperties renders props as [NAME:value,NAME:value].
func FormatProperties(props []Property) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range props {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// CheckRepeatable reports the first identifier that occurs more than once
// although MQTT5 allows it only once per list.
func CheckRepeatable(props []Property) error {
	var seen [256]bool
	for i, p := range props {
		if p.ID.Repeatable() {
			continue
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: %s at index %d", ErrDuplicateProperty, p.ID, i)
		}
		seen[p.ID] = true
	}
	return nil
}

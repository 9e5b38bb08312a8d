package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"mqprops/internal/utils"
)

type MqttProperty byte

const (
	PlFormatInd      MqttProperty = 0x01
	MsgExpInt        MqttProperty = 0x02
	ContentType      MqttProperty = 0x03
	RespTopic        MqttProperty = 0x08
	CorrData         MqttProperty = 0x09
	SubID            MqttProperty = 0x0B
	SessionExpInt    MqttProperty = 0x11
	AssignedClientID MqttProperty = 0x12
	ServerKeepAlive  MqttProperty = 0x13
	AuthMethod       MqttProperty = 0x15
	AuthData         MqttProperty = 0x16
	ReqProbInfo      MqttProperty = 0x17
	WillDelayInt     MqttProperty = 0x18
	ReqRespInfo      MqttProperty = 0x19
	RespInfo         MqttProperty = 0x1A
	ServerRef        MqttProperty = 0x1C
	ReasonString     MqttProperty = 0x1F
	ReceiveMax       MqttProperty = 0x21
	TopicAliasMax    MqttProperty = 0x22
	TopicAlias       MqttProperty = 0x23
	MaxQoS           MqttProperty = 0x24
	RetainAvail      MqttProperty = 0x25
	UserProp         MqttProperty = 0x26
	MaxPacketSize    MqttProperty = 0x27
	WildcardSubAvail MqttProperty = 0x28
	SubIDAvail       MqttProperty = 0x29
	SharedSubAvail   MqttProperty = 0x2A
)

type WireType uint8

const (
	Unknown WireType = iota
	WireByte
	WireUInt16
	WireUInt32
	WireString
	WireStringPair
	WireVarByteInt
)

func (t WireType) String() string {
	switch t {
	case WireByte:
		return "Byte"
	case WireUInt16:
		return "UInt16"
	case WireUInt32:
		return "UInt32"
	case WireString:
		return "UTF8String"
	case WireStringPair:
		return "UTF8StringPair"
	case WireVarByteInt:
		return "VarByteInt"
	default:
		return "Unknown"
	}
}

type propertySpec struct {
	wire       WireType
	name       string
	repeatable bool
}

// registry is indexed by identifier. Zero entries are unassigned identifiers.
var registry = [256]propertySpec{
	PlFormatInd:      {WireByte, "PAYLOAD_FORMAT_INDICATOR", false},
	MsgExpInt:        {WireUInt32, "MESSAGE_EXPIRY_INTERVAL", false},
	ContentType:      {WireString, "CONTENT_TYPE", false},
	RespTopic:        {WireString, "RESPONSE_TOPIC", false},
	CorrData:         {WireString, "CORRELATION_DATA", false},
	SubID:            {WireVarByteInt, "SUBSCRIPTION_IDENTIFIER", true},
	SessionExpInt:    {WireUInt32, "SESSION_EXPIRY_INTERVAL", false},
	AssignedClientID: {WireString, "ASSIGNED_CLIENT_IDENTIFIER", false},
	ServerKeepAlive:  {WireUInt16, "SERVER_KEEP_ALIVE", false},
	AuthMethod:       {WireString, "AUTHENTICATION_METHOD", false},
	AuthData:         {WireString, "AUTHENTICATION_DATA", false},
	ReqProbInfo:      {WireByte, "REQUEST_PROBLEM_INFO", false},
	WillDelayInt:     {WireUInt32, "WILL_DELAY_INTERVAL", false},
	ReqRespInfo:      {WireByte, "REQUEST_RESPONSE_INFO", false},
	RespInfo:         {WireString, "RESPONSE_INFO", false},
	ServerRef:        {WireString, "SERVER_REFERENCE", false},
	ReasonString:     {WireString, "REASON_STRING", false},
	ReceiveMax:       {WireUInt16, "RECEIVE_MAXIMUM", false},
	TopicAliasMax:    {WireUInt16, "TOPIC_ALIAS_MAXIMUM", false},
	TopicAlias:       {WireUInt16, "TOPIC_ALIAS", false},
	MaxQoS:           {WireByte, "MAXIMUM_QOS", false},
	RetainAvail:      {WireByte, "RETAIN_AVAILABLE", false},
	UserProp:         {WireStringPair, "USER_PROPERTY", true},
	MaxPacketSize:    {WireUInt32, "MAXIMUM_PACKET_SIZE", false},
	WildcardSubAvail: {WireByte, "WILDCARD_SUB_AVAILABLE", false},
	SubIDAvail:       {WireByte, "SUBSCRIPTION_ID_AVAILABLE", false},
	SharedSubAvail:   {WireByte, "SHARED_SUB_AVAILABLE", false},
}

type wireCodec struct {
	encode func(dst []byte, p Property) ([]byte, error)
	// decode fills in p.Value (and p.Name) from b, which starts after the
	// identifier byte and ends at the property length boundary.
	decode func(b []byte, p *Property) (int, error)
}

var wireCodecs = [...]wireCodec{
	WireByte:       {encodeByte, decodeByte},
	WireUInt16:     {encodeUInt16, decodeUInt16},
	WireUInt32:     {encodeUInt32, decodeUInt32},
	WireString:     {encodeString, decodeString},
	WireStringPair: {encodeStringPair, decodeStringPair},
	WireVarByteInt: {encodeVarByteInt, decodeVarByteInt},
}

var byName = map[string]MqttProperty{}

func init() {
	for id, spec := range registry {
		if spec.wire == Unknown {
			continue
		}
		utils.Assert(int(spec.wire) < len(wireCodecs))
		utils.AssertMsg(wireCodecs[spec.wire].encode != nil && wireCodecs[spec.wire].decode != nil,
			"no codec for wire type", spec.wire, "of property", id)
		_, dup := byName[spec.name]
		utils.AssertMsg(!dup, "duplicate property name", spec.name)
		byName[spec.name] = MqttProperty(id)
	}
}

// WireType returns Unknown for identifiers MQTT5 does not assign.
func (id MqttProperty) WireType() WireType {
	return registry[id].wire
}

// Repeatable reports whether id may appear more than once in one list.
func (id MqttProperty) Repeatable() bool {
	return registry[id].repeatable
}

func (id MqttProperty) String() string {
	if registry[id].wire == Unknown {
		return fmt.Sprintf("<Unknown property ID=%d>", byte(id))
	}
	return registry[id].name
}

// Lookup returns the wire type and display name registered for id.
func Lookup(id MqttProperty) (WireType, string, bool) {
	spec := registry[id]
	return spec.wire, spec.name, spec.wire != Unknown
}

// PropertyByName resolves a display name such as "TOPIC_ALIAS".
func PropertyByName(name string) (MqttProperty, bool) {
	id, ok := byName[name]
	return id, ok
}

func encodeByte(dst []byte, p Property) ([]byte, error) {
	x, err := uintValue(p.Value, math.MaxUint8)
	if err != nil {
		return dst, err
	}
	return append(dst, byte(x)), nil
}

func decodeByte(b []byte, p *Property) (int, error) {
	if len(b) < 1 {
		return 0, ErrTruncatedProperty
	}
	p.Value = b[0]
	return 1, nil
}

func encodeUInt16(dst []byte, p Property) ([]byte, error) {
	x, err := uintValue(p.Value, math.MaxUint16)
	if err != nil {
		return dst, err
	}
	return binary.BigEndian.AppendUint16(dst, uint16(x)), nil
}

func decodeUInt16(b []byte, p *Property) (int, error) {
	if len(b) < 2 {
		return 0, ErrTruncatedProperty
	}
	p.Value = binary.BigEndian.Uint16(b[:2])
	return 2, nil
}

func encodeUInt32(dst []byte, p Property) ([]byte, error) {
	x, err := uintValue(p.Value, math.MaxUint32)
	if err != nil {
		return dst, err
	}
	return binary.BigEndian.AppendUint32(dst, uint32(x)), nil
}

func decodeUInt32(b []byte, p *Property) (int, error) {
	if len(b) < 4 {
		return 0, ErrTruncatedProperty
	}
	p.Value = binary.BigEndian.Uint32(b[:4])
	return 4, nil
}

func encodeString(dst []byte, p Property) ([]byte, error) {
	s, err := stringValue(p.Value)
	if err != nil {
		return dst, err
	}
	return UTF8String(s).appendTo(dst)
}

func decodeString(b []byte, p *Property) (int, error) {
	var s UTF8String
	n, err := s.decode(b)
	if err != nil {
		return 0, err
	}
	p.Value = string(s)
	return n, nil
}

func encodeStringPair(dst []byte, p Property) ([]byte, error) {
	s, err := stringValue(p.Value)
	if err != nil {
		return dst, err
	}
	return UTF8StringPair{Name: UTF8String(p.Name), Value: UTF8String(s)}.appendTo(dst)
}

func decodeStringPair(b []byte, p *Property) (int, error) {
	var sp UTF8StringPair
	n, err := sp.decode(b)
	if err != nil {
		return 0, err
	}
	p.Name = string(sp.Name)
	p.Value = string(sp.Value)
	return n, nil
}

func encodeVarByteInt(dst []byte, p Property) ([]byte, error) {
	x, err := uintValue(p.Value, math.MaxUint32)
	if err != nil {
		return dst, err
	}
	return VarByteInt(x).appendTo(dst)
}

func decodeVarByteInt(b []byte, p *Property) (int, error) {
	var v VarByteInt
	n, err := v.decode(b)
	if err != nil {
		// Running into the boundary is a short property, not a malformed integer.
		if len(b) < maxVarByteIntLen {
			return 0, ErrTruncatedProperty
		}
		return 0, err
	}
	p.Value = uint32(v)
	return n, nil
}

func uintValue(v any, limit uint64) (uint64, error) {
	var x uint64
	switch n := v.(type) {
	case uint8:
		x = uint64(n)
	case uint16:
		x = uint64(n)
	case uint32:
		x = uint64(n)
	case uint64:
		x = n
	case uint:
		x = uint64(n)
	case int, int8, int16, int32, int64:
		i := signedValue(n)
		if i < 0 {
			return 0, fmt.Errorf("%w: negative %d", ErrInvalidValue, i)
		}
		x = uint64(i)
	default:
		return 0, fmt.Errorf("%w: %T is not an integer", ErrInvalidValue, v)
	}
	if x > limit {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrInvalidValue, x, limit)
	}
	return x, nil
}

func signedValue(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	default:
		return v.(int64)
	}
}

func stringValue(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case UTF8String:
		return string(s), nil
	default:
		return "", fmt.Errorf("%w: %T is not a string", ErrInvalidValue, v)
	}
}

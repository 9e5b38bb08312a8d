package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// one valid entry per registered identifier
var sampleProperties = []Property{
	{ID: PlFormatInd, Value: byte(1)},
	{ID: MsgExpInt, Value: uint32(3600)},
	{ID: ContentType, Value: "application/json"},
	{ID: RespTopic, Value: "reply/to"},
	{ID: CorrData, Value: "\x00\x01corr"},
	{ID: SubID, Value: uint32(268435455)},
	{ID: SessionExpInt, Value: uint32(0xFFFFFFFF)},
	{ID: AssignedClientID, Value: "client-1"},
	{ID: ServerKeepAlive, Value: uint16(60)},
	{ID: AuthMethod, Value: "SCRAM-SHA-1"},
	{ID: AuthData, Value: "secret"},
	{ID: ReqProbInfo, Value: byte(0)},
	{ID: WillDelayInt, Value: uint32(70000)},
	{ID: ReqRespInfo, Value: byte(1)},
	{ID: RespInfo, Value: "info"},
	{ID: ServerRef, Value: "other.example"},
	{ID: ReasonString, Value: "because"},
	{ID: ReceiveMax, Value: uint16(20)},
	{ID: TopicAliasMax, Value: uint16(65535)},
	{ID: TopicAlias, Value: uint16(3)},
	{ID: MaxQoS, Value: byte(1)},
	{ID: RetainAvail, Value: byte(0)},
	{ID: UserProp, Name: "region", Value: "eu"},
	{ID: MaxPacketSize, Value: uint32(1 << 20)},
	{ID: WildcardSubAvail, Value: byte(1)},
	{ID: SubIDAvail, Value: byte(0)},
	{ID: SharedSubAvail, Value: byte(1)},
}

func TestRegistryCoversAllProperties(t *testing.T) {
	count := 0
	for id := 0; id < 256; id++ {
		if MqttProperty(id).WireType() != Unknown {
			count++
		}
	}
	assert.Equal(t, 27, count)
	assert.Len(t, sampleProperties, count)

	wire, name, ok := Lookup(SubID)
	assert.True(t, ok)
	assert.Equal(t, WireVarByteInt, wire)
	assert.Equal(t, "SUBSCRIPTION_IDENTIFIER", name)

	_, _, ok = Lookup(0x7F)
	assert.False(t, ok)

	id, ok := PropertyByName("TOPIC_ALIAS")
	assert.True(t, ok)
	assert.Equal(t, TopicAlias, id)

	assert.True(t, UserProp.Repeatable())
	assert.True(t, SubID.Repeatable())
	assert.False(t, TopicAlias.Repeatable())
}

func TestRoundTrip(t *testing.T) {
	for _, p := range sampleProperties {
		t.Run(p.ID.String(), func(t *testing.T) {
			b, err := EncodeProperties([]Property{p})
			require.NoError(t, err)

			got, n, err := DecodeProperties(b)
			require.NoError(t, err)
			assert.Equal(t, len(b), n)
			assert.Equal(t, []Property{p}, got)
		})
	}
}

func TestEncodeVectors(t *testing.T) {
	tests := []struct {
		name string
		prop Property
		want []byte
	}{
		{"byte", Property{ID: PlFormatInd, Value: byte(1)}, []byte{0x01, 0x01}},
		{"uint16", Property{ID: ServerKeepAlive, Value: uint16(10)}, []byte{0x13, 0x00, 0x0A}},
		{"uint32", Property{ID: SessionExpInt, Value: uint32(30)}, []byte{0x11, 0x00, 0x00, 0x00, 0x1E}},
		{"string", Property{ID: ContentType, Value: "a"}, []byte{0x03, 0x00, 0x01, 0x61}},
		{"string pair", Property{ID: UserProp, Name: "k", Value: "v"}, []byte{0x26, 0x00, 0x01, 'k', 0x00, 0x01, 'v'}},
		{"varint", Property{ID: SubID, Value: uint32(128)}, []byte{0x0B, 0x80, 0x01}},
		{"int value", Property{ID: TopicAlias, Value: 7}, []byte{0x23, 0x00, 0x07}},
		{"bytes value", Property{ID: CorrData, Value: []byte{0xDE, 0xAD}}, []byte{0x09, 0x00, 0x02, 0xDE, 0xAD}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := EncodeProperties([]Property{tt.prop})
			require.NoError(t, err)
			assert.Equal(t, append([]byte{byte(len(tt.want))}, tt.want...), b)
		})
	}
}

func TestEncodeEmpty(t *testing.T) {
	b, err := EncodeProperties(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, b)

	props, n, err := DecodeProperties(b)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, props)
}

func TestLengthPrefixMatchesPayload(t *testing.T) {
	// enough user properties to need a two byte length
	props := append([]Property{}, sampleProperties...)
	for i := 0; i < 20; i++ {
		props = append(props, Property{ID: UserProp, Name: "key", Value: "value"})
	}

	b, err := EncodeProperties(props)
	require.NoError(t, err)

	length, n, err := DecodeVarByteInt(b, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, len(b)-n, int(length))
}

func TestIdempotence(t *testing.T) {
	props := append([]Property{
		{ID: UserProp, Name: "a", Value: "1"},
		{ID: SubID, Value: uint32(1)},
	}, sampleProperties...)
	props = append(props,
		Property{ID: UserProp, Name: "a", Value: "2"},
		Property{ID: SubID, Value: uint32(2)},
	)

	first, err := EncodeProperties(props)
	require.NoError(t, err)

	decoded, _, err := DecodeProperties(first)
	require.NoError(t, err)
	assert.Equal(t, props, decoded)

	second, err := EncodeProperties(decoded)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeStopsAtBoundary(t *testing.T) {
	b := []byte{0x05, 0x11, 0x00, 0x00, 0x00, 0x1E, 0x03, 0x00, 0x01, 0x61}

	props, n, err := DecodeProperties(b)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, []Property{{ID: SessionExpInt, Value: uint32(30)}}, props)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		err      error
		offset   int
		consumed int
		partial  []Property
	}{
		{
			name:  "empty buffer",
			input: []byte{},
			err:   ErrTruncatedVarint,
		},
		{
			name:  "unterminated length",
			input: []byte{0x80, 0x80},
			err:   ErrTruncatedVarint,
		},
		{
			name:     "length exceeds buffer",
			input:    []byte{0x04, 0x01, 0x01},
			err:      ErrTruncatedPayload,
			offset:   1,
			consumed: 1,
		},
		{
			name:     "cut in string length",
			input:    []byte{0x02, 0x03, 0x00, 0x01, 0x61},
			err:      ErrTruncatedProperty,
			offset:   1,
			consumed: 1,
		},
		{
			name:     "string longer than block",
			input:    []byte{0x04, 0x03, 0x00, 0x05, 0x61, 0x62, 0x63, 0x64, 0x65},
			err:      ErrTruncatedProperty,
			offset:   1,
			consumed: 1,
		},
		{
			name:     "uint32 cut by boundary",
			input:    []byte{0x03, 0x11, 0x00, 0x00, 0x00, 0x1E},
			err:      ErrTruncatedProperty,
			offset:   1,
			consumed: 1,
		},
		{
			name:     "varint cut by boundary",
			input:    []byte{0x04, 0x01, 0x00, 0x0B, 0x80, 0x01},
			err:      ErrTruncatedProperty,
			offset:   3,
			consumed: 3,
			partial:  []Property{{ID: PlFormatInd, Value: byte(0)}},
		},
		{
			name:     "varint without terminator",
			input:    []byte{0x05, 0x0B, 0x80, 0x80, 0x80, 0x80},
			err:      ErrTruncatedVarint,
			offset:   1,
			consumed: 1,
		},
		{
			name:     "second user property value cut",
			input:    []byte{0x0A, 0x23, 0x00, 0x01, 0x26, 0x00, 0x01, 'k', 0x00, 0x03, 'v'},
			err:      ErrTruncatedProperty,
			offset:   4,
			consumed: 4,
			partial:  []Property{{ID: TopicAlias, Value: uint16(1)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props, n, err := DecodeProperties(tt.input)
			require.ErrorIs(t, err, tt.err)

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.offset, de.Offset)
			assert.Equal(t, tt.consumed, n)
			assert.Equal(t, tt.partial, props)
		})
	}
}

func TestDecodeUnknownIdentifier(t *testing.T) {
	// 0x7F is followed by what would be a valid property
	b := []byte{0x06, 0x01, 0x01, 0x7F, 0x23, 0x00, 0x01}

	props, n, err := DecodeProperties(b)
	require.ErrorIs(t, err, ErrUnknownPropertyIdentifier)
	assert.Equal(t, 3, n)
	assert.Equal(t, []Property{{ID: PlFormatInd, Value: byte(1)}}, props)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, MqttProperty(0x7F), de.ID)
	assert.Equal(t, 3, de.Offset)
	assert.Contains(t, err.Error(), "<Unknown property ID=127>")
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		props []Property
		err   error
		index int
	}{
		{
			name:  "unknown identifier",
			props: []Property{{ID: PlFormatInd, Value: byte(1)}, {ID: 0x7F, Value: byte(1)}},
			err:   ErrUnknownPropertyIdentifier,
			index: 1,
		},
		{
			name:  "zero identifier",
			props: []Property{{ID: 0, Value: byte(1)}},
			err:   ErrUnknownPropertyIdentifier,
		},
		{
			name:  "string too long",
			props: []Property{{ID: ReasonString, Value: string(make([]byte, MaxStringLen+1))}},
			err:   ErrStringTooLong,
		},
		{
			name:  "pair name too long",
			props: []Property{{ID: UserProp, Name: string(make([]byte, MaxStringLen+1)), Value: "v"}},
			err:   ErrStringTooLong,
		},
		{
			name:  "varint overflow",
			props: []Property{{ID: SubID, Value: uint32(MaxVarByteInt + 1)}},
			err:   ErrVarintOverflow,
		},
		{
			name:  "byte out of range",
			props: []Property{{ID: MaxQoS, Value: 256}},
			err:   ErrInvalidValue,
		},
		{
			name:  "negative value",
			props: []Property{{ID: TopicAlias, Value: -1}},
			err:   ErrInvalidValue,
		},
		{
			name:  "string for integer",
			props: []Property{{ID: ReceiveMax, Value: "10"}},
			err:   ErrInvalidValue,
		},
		{
			name:  "integer for string",
			props: []Property{{ID: ContentType, Value: 10}},
			err:   ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := EncodeProperties(tt.props)
			require.ErrorIs(t, err, tt.err)
			assert.Nil(t, b)

			var ee *EncodeError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, tt.index, ee.Index)
		})
	}
}

func TestFormatProperties(t *testing.T) {
	props := []Property{
		{ID: PlFormatInd, Value: byte(1)},
		{ID: SubID, Value: uint32(5)},
		{ID: UserProp, Name: "k", Value: "v"},
		{ID: CorrData, Value: []byte("raw")},
	}
	assert.Equal(t,
		"[PAYLOAD_FORMAT_INDICATOR:1,SUBSCRIPTION_IDENTIFIER:5,USER_PROPERTY:k:v,CORRELATION_DATA:raw]",
		FormatProperties(props))
	assert.Equal(t, "[]", FormatProperties(nil))
	assert.Equal(t, "<Unknown property ID=127>:1", Property{ID: 0x7F, Value: 1}.String())
}

func TestNormalize(t *testing.T) {
	p, err := Property{ID: TopicAlias, Value: 9}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, uint16(9), p.Value)

	p, err = Property{ID: SubID, Value: int64(300)}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, uint32(300), p.Value)

	p, err = Property{ID: CorrData, Value: []byte{1, 2}}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "\x01\x02", p.Value)

	_, err = Property{ID: MaxQoS, Value: 3.5}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Property{ID: 0x7F, Value: 1}.Normalize()
	assert.ErrorIs(t, err, ErrUnknownPropertyIdentifier)
}

func TestCheckRepeatable(t *testing.T) {
	assert.NoError(t, CheckRepeatable(sampleProperties))
	assert.NoError(t, CheckRepeatable([]Property{
		{ID: UserProp, Name: "a", Value: "1"},
		{ID: UserProp, Name: "a", Value: "2"},
		{ID: SubID, Value: uint32(1)},
		{ID: SubID, Value: uint32(2)},
	}))

	err := CheckRepeatable([]Property{
		{ID: TopicAlias, Value: uint16(1)},
		{ID: UserProp, Name: "a", Value: "1"},
		{ID: TopicAlias, Value: uint16(2)},
	})
	assert.ErrorIs(t, err, ErrDuplicateProperty)
	assert.Contains(t, err.Error(), "TOPIC_ALIAS at index 2")
}

func TestEncodeLongLengthPrefix(t *testing.T) {
	// 65535 byte reason string: payload of 65538 bytes needs a three byte length
	props := []Property{{ID: ReasonString, Value: string(make([]byte, MaxStringLen))}}

	b, err := EncodeProperties(props)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x82, 0x80, 0x04}, b[:3])
	assert.Len(t, b, 3+1+2+MaxStringLen)

	decoded, n, err := DecodeProperties(b)
	require.NoError(t, err)
	assert.Equal(t, len(b), n)
	assert.Equal(t, props, decoded)
}

func TestDecodeErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		input  []byte
		length bool
		want   string
	}{
		{
			name:   "unterminated length",
			input:  []byte{0x80},
			length: true,
			want:   "decode properties at offset 0: truncated variable byte integer",
		},
		{
			name:   "length exceeds buffer",
			input:  []byte{0x03, 0x01},
			length: true,
			want:   "decode properties at offset 1: property length exceeds buffer",
		},
		{
			name:  "zero identifier",
			input: []byte{0x02, 0x00, 0x01},
			want:  "decode <Unknown property ID=0> at offset 1: unknown property identifier",
		},
		{
			name:  "truncated property",
			input: []byte{0x02, 0x23, 0x00},
			want:  "decode TOPIC_ALIAS at offset 1: property exceeds property length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeProperties(tt.input)
			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.length, de.Length)
			assert.EqualError(t, err, tt.want)
		})
	}
}

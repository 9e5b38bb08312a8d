package protocol

import (
	"encoding/binary"
	"math"
)

const (
	// MaxVarByteInt is the largest value a four byte Variable Byte Integer can hold.
	MaxVarByteInt = 268435455
	// MaxStringLen is the largest encoded length of a UTF-8 string field.
	MaxStringLen = math.MaxUint16

	maxVarByteIntLen = 4
)

type VarByteInt uint32

// EncodeVarByteInt returns the 1 to 4 byte encoding of x.
func EncodeVarByteInt(x uint32) ([]byte, error) {
	return VarByteInt(x).appendTo(make([]byte, 0, maxVarByteIntLen))
}

// DecodeVarByteInt decodes the Variable Byte Integer starting at b[offset]
// and returns its value and the number of bytes it occupies.
func DecodeVarByteInt(b []byte, offset int) (uint32, int, error) {
	if offset < 0 || offset > len(b) {
		return 0, 0, ErrTruncatedVarint
	}
	var v VarByteInt
	n, err := v.decode(b[offset:])
	if err != nil {
		return 0, 0, err
	}
	return uint32(v), n, nil
}

func (v VarByteInt) appendTo(dst []byte) ([]byte, error) {
	if v > MaxVarByteInt {
		return dst, ErrVarintOverflow
	}
	x := uint32(v)
	for {
		encodedByte := byte(x % 128)
		x /= 128
		if x > 0 {
			encodedByte |= 128
		}
		dst = append(dst, encodedByte)
		if x == 0 {
			return dst, nil
		}
	}
}

func (v *VarByteInt) decode(b []byte) (int, error) {
	multiplier := uint32(1)
	x := uint32(0)
	for n := 0; n < maxVarByteIntLen; n++ {
		if n >= len(b) {
			return 0, ErrTruncatedVarint
		}
		encodedByte := b[n]
		x += uint32(encodedByte&127) * multiplier
		if encodedByte&128 == 0 {
			*v = VarByteInt(x)
			return n + 1, nil
		}
		multiplier *= 128
	}
	return 0, ErrTruncatedVarint
}

// UTF8String is not validated on decode; invalid sequences are kept as raw bytes.
type UTF8String string

func (s UTF8String) appendTo(dst []byte) ([]byte, error) {
	if len(s) > MaxStringLen {
		return dst, ErrStringTooLong
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(s)))
	return append(dst, s...), nil
}

func (s *UTF8String) decode(b []byte) (int, error) {
	if len(b) < 2 {
		return 0, ErrTruncatedProperty
	}
	slen := int(binary.BigEndian.Uint16(b[:2]))
	b = b[2:]
	if len(b) < slen {
		return 0, ErrTruncatedProperty
	}
	*s = UTF8String(b[:slen])
	return 2 + slen, nil
}

type UTF8StringPair struct {
	Name  UTF8String
	Value UTF8String
}

func (sp UTF8StringPair) appendTo(dst []byte) ([]byte, error) {
	dst, err := sp.Name.appendTo(dst)
	if err != nil {
		return dst, err
	}
	return sp.Value.appendTo(dst)
}

func (sp *UTF8StringPair) decode(b []byte) (int, error) {
	n, err := sp.Name.decode(b)
	if err != nil {
		return 0, err
	}
	m, err := sp.Value.decode(b[n:])
	if err != nil {
		return 0, err
	}
	return n + m, nil
}

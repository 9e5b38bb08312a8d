package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode"

	"mqprops/internal/fixture"
	"mqprops/internal/protocol"
	"mqprops/internal/utils"
)

// DecodeOptions controls how RunDecode renders a property block.
type DecodeOptions struct {
	Format fixture.Format
	// Strict rejects repeated identifiers that MQTT5 allows only once.
	Strict bool
}

// RunEncode encodes the fixture at path and writes the block as hex to w.
func RunEncode(path string, strict bool, w io.Writer) error {
	props, err := fixture.Load(path)
	if err != nil {
		return err
	}
	utils.LogDebug("loaded", len(props), "properties from", path)

	if strict {
		if err := protocol.CheckRepeatable(props); err != nil {
			return err
		}
	}

	b, err := protocol.EncodeProperties(props)
	if err != nil {
		return err
	}
	utils.LogDebug("encoded", protocol.FormatProperties(props), "into", len(b), "bytes")

	_, err = fmt.Fprintln(w, hex.EncodeToString(b))
	return err
}

// RunDecode decodes a hex encoded property block and writes it to w.
// Bytes after the block are reported but not decoded. When decoding fails
// part way, the properties read before the failure are still written.
func RunDecode(input string, opts DecodeOptions, w io.Writer) error {
	b, err := ParseHex(input)
	if err != nil {
		return err
	}

	props, n, decErr := protocol.DecodeProperties(b)
	if decErr != nil {
		utils.LogWarn("decoded", len(props), "properties before error:", decErr)
		if len(props) > 0 {
			if err := export(w, props, opts.Format); err != nil {
				return err
			}
		}
		return decErr
	}
	if n < len(b) {
		utils.LogDebug("ignoring", len(b)-n, "bytes after property block:", hex.EncodeToString(b[n:]))
	}

	if opts.Strict {
		if err := protocol.CheckRepeatable(props); err != nil {
			return err
		}
	}

	return export(w, props, opts.Format)
}

// export writes CBOR as a line of hex so it stays printable.
func export(w io.Writer, props []protocol.Property, format fixture.Format) error {
	if format != fixture.FormatCBOR {
		return fixture.Export(w, props, format)
	}
	if err := fixture.Export(hex.NewEncoder(w), props, format); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// ParseHex accepts hex with optional whitespace and 0x prefix.
func ParseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return b, nil
}

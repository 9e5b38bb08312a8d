package fixture

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"mqprops/internal/protocol"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML, FormatCBOR:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (text, json, yaml, cbor)", s)
	}
}

// Record is the exported shape of one decoded property.
type Record struct {
	ID    uint8  `json:"id" yaml:"id" cbor:"1,keyasint"`
	Name  string `json:"name" yaml:"name" cbor:"2,keyasint"`
	Key   string `json:"key,omitempty" yaml:"key,omitempty" cbor:"3,keyasint,omitempty"`
	Value any    `json:"value" yaml:"value" cbor:"4,keyasint"`
}

var cborEnc cbor.EncMode

func init() {
	var err error
	cborEnc, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}
}

// Records converts props to their exported form.
func Records(props []protocol.Property) []Record {
	records := make([]Record, 0, len(props))
	for _, p := range props {
		records = append(records, Record{
			ID:    uint8(p.ID),
			Name:  p.ID.String(),
			Key:   p.Name,
			Value: p.Value,
		})
	}
	return records
}

// Export writes props to w in the given format. CBOR output is binary.
func Export(w io.Writer, props []protocol.Property, format Format) error {
	switch format {
	case FormatText:
		_, err := fmt.Fprintln(w, protocol.FormatProperties(props))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Records(props))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Records(props)); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		return cborEnc.NewEncoder(w).Encode(Records(props))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

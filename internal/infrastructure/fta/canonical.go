package fta

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/ucarion/c14n"
	"golang.org/x/text/unicode/norm"

	"github.com/Saifnaser12/peergos-sub004/internal/domain"
)

// Canonicalize converts the serialized invoice into its canonical form:
// XML C14N followed by Unicode NFC normalization, so equivalent documents
// hash to the same digest. Pure: same input, same output.
func Canonicalize(xmlBytes []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
	dec.Entity = map[string]string{}
	out, err := c14n.Canonicalize(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: canonicalize: %v", domain.ErrSerialization, err)
	}
	return norm.NFC.Bytes(out), nil
}

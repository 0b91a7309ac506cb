// Package xdrcodec is the opt-in upgrade path from the fixed-width Pascal
// string codec in internal/codec to RFC 4506 external data representation,
// for payloads too large for the 1-byte length prefix (codec.MaxStringLength).
// It wraps github.com/rasky/go-xdr/xdr2's reflection-based Marshal/Unmarshal
// the same way the teacher wraps it for NFS MOUNT arguments.
package xdrcodec

import (
	"bytes"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// Opaque is RFC 4506 §4.10 variable-length opaque data: a uint32 length
// followed by the bytes, padded to a 4-byte boundary.
type Opaque struct {
	Data []byte
}

// Encode marshals v into XDR wire format.
func Encode(v Opaque) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, v); err != nil {
		return nil, fmt.Errorf("xdrcodec: marshal: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode unmarshals an XDR-encoded Opaque from data, returning the number
// of bytes consumed.
func Decode(data []byte) (Opaque, int, error) {
	var v Opaque
	n, err := xdr.Unmarshal(bytes.NewReader(data), &v)
	if err != nil {
		return Opaque{}, 0, fmt.Errorf("xdrcodec: unmarshal: %w", err)
	}
	return v, n, nil
}

// Package netio is Network I/O (SPEC_FULL.md §4.H): a UDP transport for
// the hot path (movement/state updates) over sandertv/go-raknet, which
// gives each client one reliable-ordered connection, plus a TCP bulk channel for the "get all maps"
// one-shot transfer. Framing on the TCP side is adapted directly from
// the teacher's internal/net/codec.go ReadFrame/WriteFrame, with the
// XOR stream cipher dropped — this project has no login handshake to
// protect, and raknet already gives the UDP side its own integrity.
package netio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadFrame reads one length-prefixed frame: [4 bytes LE: payload
// length][payload]. Widened from the teacher's 2-byte header (64KiB cap)
// to 4 bytes since a bulk map transfer can exceed 64KiB.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	payloadLen := binary.LittleEndian.Uint32(header[:])
	const maxFrame = 64 << 20
	if payloadLen == 0 || payloadLen > maxFrame {
		return nil, fmt.Errorf("invalid frame length: %d", payloadLen)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", payloadLen, err)
	}
	return payload, nil
}

// WriteFrame writes one length-prefixed frame.
func WriteFrame(w io.Writer, data []byte) error {
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(data)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

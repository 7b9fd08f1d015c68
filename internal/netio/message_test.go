package netio

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Envelope{
		Op:  OpUpdateVelocity,
		Seq: 42,
		UpdateVelocity: &UpdateVelocityMsg{VelX: 1, VelY: -1},
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Op != in.Op || out.Seq != in.Seq {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
	if out.UpdateVelocity == nil || *out.UpdateVelocity != *in.UpdateVelocity {
		t.Fatalf("UpdateVelocity payload lost in round trip: %+v", out.UpdateVelocity)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello world")

	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("frame round trip mismatch: got %q, want %q", got, payload)
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff}) // length header far beyond maxFrame
	if _, err := ReadFrame(&buf); err == nil {
		t.Fatalf("expected an error for an oversized frame length")
	}
}

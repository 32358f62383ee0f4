package session

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func testState() State {
	return State{
		Token:     "jwt:abc.def.ghi",
		PublicKey: "MCowBQYDK2VwAyEA",
		User:      &User{ID: 7, Name: "Andy", Email: "andy@test.com"},
	}
}

func TestEncodeDecodeCurrentSchema(t *testing.T) {
	in := testState()
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if data[0] != CurrentSchemaVersion {
		t.Fatalf("expected schema byte %d, got %d", CurrentSchemaVersion, data[0])
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Token != in.Token || out.PublicKey != in.PublicKey {
		t.Fatalf("token/public key mismatch: %+v", out)
	}
	if out.User == nil || *out.User != *in.User {
		t.Fatalf("user mismatch: %+v", out.User)
	}
}

func TestEncodeDecodeWithoutUser(t *testing.T) {
	data, err := Encode(State{Token: "t1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Token != "t1" || out.User != nil || out.PublicKey != "" {
		t.Fatalf("unexpected state %+v", out)
	}
}

func TestDecodeRejectsUnsupportedSchemaVersion(t *testing.T) {
	_, err := Decode([]byte{99})
	if err == nil || !strings.Contains(err.Error(), "unsupported session schema version") {
		t.Fatalf("expected unsupported schema version error, got %v", err)
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	data, err := Encode(testState())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, n := range []int{0, 1, 2, 5, len(data) - 1} {
		if _, err := Decode(data[:n]); err == nil {
			t.Fatalf("expected error decoding %d of %d bytes", n, len(data))
		}
	}
}

func TestEncodeRejectsOversizedToken(t *testing.T) {
	if _, err := Encode(State{Token: strings.Repeat("x", 1<<16)}); err == nil {
		t.Fatal("expected oversized token to be rejected")
	}
}

func TestDecodeLegacySchemas(t *testing.T) {
	v1 := encodeLegacy(t, 1, "t-v1", "")
	st, err := Decode(v1)
	if err != nil {
		t.Fatalf("decode v1: %v", err)
	}
	if st.SchemaVersion != 1 || st.Token != "t-v1" || st.PublicKey != "" || st.User != nil {
		t.Fatalf("unexpected v1 state %+v", st)
	}

	v2 := encodeLegacy(t, 2, "t-v2", "pk")
	st, err = Decode(v2)
	if err != nil {
		t.Fatalf("decode v2: %v", err)
	}
	if st.SchemaVersion != 2 || st.Token != "t-v2" || st.PublicKey != "pk" {
		t.Fatalf("unexpected v2 state %+v", st)
	}
}

func encodeLegacy(tb testing.TB, version byte, token, publicKey string) []byte {
	tb.Helper()
	var buf bytes.Buffer
	buf.WriteByte(version)
	write := func(v string) {
		var n [2]byte
		binary.BigEndian.PutUint16(n[:], uint16(len(v)))
		buf.Write(n[:])
		buf.WriteString(v)
	}
	write(token)
	if version >= 2 {
		write(publicKey)
	}
	return buf.Bytes()
}

// FuzzStateDecode exercises the binary decoder with arbitrary inputs.
// Goal: no panics, graceful error handling.
func FuzzStateDecode(f *testing.F) {
	encoded, err := Encode(testState())
	if err == nil {
		f.Add(encoded)
		f.Add(encoded[:len(encoded)/2])
	}
	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{3})
	f.Add([]byte{3, 0xff, 0xff})
	f.Add([]byte{255, 255, 255})

	f.Fuzz(func(t *testing.T, data []byte) {
		st, err := Decode(data)
		if err != nil {
			return
		}
		if _, err := Encode(st); err != nil {
			t.Fatalf("re-encode of decoded state failed: %v", err)
		}
	})
}

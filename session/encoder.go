package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	stateFormatVersionCurrent = 3
	stateFormatVersionV2      = 2
	stateFormatVersionV1      = 1
)

// CurrentSchemaVersion is the schema version written by Encode.
const CurrentSchemaVersion uint8 = stateFormatVersionCurrent

var errFieldTooLong = errors.New("field too long")

// Encode serializes s in the current binary schema.
func Encode(s State) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(16 + len(s.Token) + len(s.PublicKey))

	buf.WriteByte(stateFormatVersionCurrent)

	if err := writeString(&buf, s.Token); err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	if err := writeString(&buf, s.PublicKey); err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}

	if s.User == nil {
		buf.WriteByte(0)
		return buf.Bytes(), nil
	}
	buf.WriteByte(1)
	if err := binary.Write(&buf, binary.BigEndian, s.User.ID); err != nil {
		return nil, err
	}
	if err := writeString(&buf, s.User.Name); err != nil {
		return nil, fmt.Errorf("user name: %w", err)
	}
	if err := writeString(&buf, s.User.Email); err != nil {
		return nil, fmt.Errorf("user email: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode parses any supported schema version. Fields introduced after the
// stored version are left at their zero values.
func Decode(data []byte) (State, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return State{}, err
	}
	if version != stateFormatVersionCurrent &&
		version != stateFormatVersionV2 &&
		version != stateFormatVersionV1 {
		return State{}, fmt.Errorf("unsupported session schema version %d", version)
	}

	s := State{SchemaVersion: version}

	if s.Token, err = readString(reader); err != nil {
		return State{}, err
	}

	if version >= stateFormatVersionV2 {
		if s.PublicKey, err = readString(reader); err != nil {
			return State{}, err
		}
	}

	if version >= stateFormatVersionCurrent {
		hasUser, err := reader.ReadByte()
		if err != nil {
			return State{}, err
		}
		switch hasUser {
		case 0:
		case 1:
			u := &User{}
			if err := binary.Read(reader, binary.BigEndian, &u.ID); err != nil {
				return State{}, err
			}
			if u.Name, err = readString(reader); err != nil {
				return State{}, err
			}
			if u.Email, err = readString(reader); err != nil {
				return State{}, err
			}
			s.User = u
		default:
			return State{}, errors.New("invalid user marker")
		}
	}

	return s, nil
}

func writeString(buf *bytes.Buffer, v string) error {
	if len(v) > math.MaxUint16 {
		return errFieldTooLong
	}
	var n [2]byte
	binary.BigEndian.PutUint16(n[:], uint16(len(v)))
	buf.Write(n[:])
	buf.WriteString(v)
	return nil
}

func readString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	if int(n) > r.Len() {
		return "", io.ErrUnexpectedEOF
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

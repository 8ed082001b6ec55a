package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MrEthical07/portalAuth/role"
)

const (
	snapshotFormatVersionCurrent = 3
	snapshotFormatVersionV2      = 2
	snapshotFormatVersionV1      = 1

	// CurrentSchemaVersion is the encoding version written by [Encode].
	CurrentSchemaVersion uint8 = snapshotFormatVersionCurrent

	maxTokenLen = 1<<16 - 1
	maxFieldLen = 1<<16 - 1
)

// ErrSnapshotCorrupt wraps every decode failure.
var ErrSnapshotCorrupt = errors.New("session snapshot corrupt")

// Encode serializes s at the current schema version.
func Encode(s *Snapshot) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil snapshot")
	}
	if len(s.Token) > maxTokenLen {
		return nil, errors.New("token too long")
	}

	var buf bytes.Buffer
	buf.WriteByte(snapshotFormatVersionCurrent)

	if err := binary.Write(&buf, binary.BigEndian, uint16(len(s.Token))); err != nil {
		return nil, err
	}
	buf.WriteString(s.Token)

	if s.User == nil {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		u := s.User
		for _, field := range []string{u.ID, u.Email, u.DisplayName, u.Role.String(), u.Plan} {
			if err := writeString(&buf, field); err != nil {
				return nil, err
			}
		}
		if err := binary.Write(&buf, binary.BigEndian, u.Credits); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.BigEndian, unixMilli(u.CreatedAt)); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.BigEndian, unixMilli(u.UpdatedAt)); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(&buf, binary.BigEndian, unixMilli(s.SavedAt)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses any supported schema version. Older versions are migrated in
// memory; SchemaVersion on the result reports the version that was read.
func Decode(data []byte) (*Snapshot, error) {
	s, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	return s, nil
}

func decode(data []byte) (*Snapshot, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version < snapshotFormatVersionV1 || version > snapshotFormatVersionCurrent {
		return nil, errors.New("invalid snapshot version")
	}

	// v1 and v2 prefix user fields with a single length byte.
	readField := readString
	if version < snapshotFormatVersionCurrent {
		readField = readShortString
	}

	s := &Snapshot{SchemaVersion: version}

	var tokenLen uint16
	if err := binary.Read(reader, binary.BigEndian, &tokenLen); err != nil {
		return nil, err
	}
	token := make([]byte, tokenLen)
	if _, err := io.ReadFull(reader, token); err != nil {
		return nil, err
	}
	s.Token = string(token)

	hasUser, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if hasUser > 1 {
		return nil, errors.New("invalid user marker")
	}

	if hasUser == 1 {
		u := &User{}
		if u.ID, err = readField(reader); err != nil {
			return nil, err
		}
		if u.Email, err = readField(reader); err != nil {
			return nil, err
		}
		if u.DisplayName, err = readField(reader); err != nil {
			return nil, err
		}
		roleName, err := readField(reader)
		if err != nil {
			return nil, err
		}
		u.Role = role.MustParse(roleName)

		if version >= snapshotFormatVersionV2 {
			if u.Plan, err = readField(reader); err != nil {
				return nil, err
			}
			if err := binary.Read(reader, binary.BigEndian, &u.Credits); err != nil {
				return nil, err
			}
			var created, updated int64
			if err := binary.Read(reader, binary.BigEndian, &created); err != nil {
				return nil, err
			}
			if err := binary.Read(reader, binary.BigEndian, &updated); err != nil {
				return nil, err
			}
			u.CreatedAt = fromUnixMilli(created)
			u.UpdatedAt = fromUnixMilli(updated)
		}
		s.User = u
	}

	if version >= snapshotFormatVersionV2 {
		var saved int64
		if err := binary.Read(reader, binary.BigEndian, &saved); err != nil {
			return nil, err
		}
		s.SavedAt = fromUnixMilli(saved)
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes")
	}

	return s, nil
}

func writeString(buf *bytes.Buffer, v string) error {
	if len(v) > maxFieldLen {
		return errors.New("field too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(v))); err != nil {
		return err
	}
	buf.WriteString(v)
	return nil
}

func readString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func readShortString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

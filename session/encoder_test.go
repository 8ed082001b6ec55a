package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func encodeLegacyV1(t *testing.T, token string, u *User) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(snapshotFormatVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(token))); err != nil {
		t.Fatalf("write token len: %v", err)
	}
	buf.WriteString(token)
	if u == nil {
		buf.WriteByte(0)
		return buf.Bytes()
	}
	buf.WriteByte(1)
	for _, field := range []string{u.ID, u.Email, u.DisplayName, u.Role.String()} {
		buf.WriteByte(byte(len(field)))
		buf.WriteString(field)
	}
	return buf.Bytes()
}

func TestDecodeRejectsUnsupportedSchemaVersion(t *testing.T) {
	_, err := Decode([]byte{99})
	if !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("expected ErrSnapshotCorrupt, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid snapshot version") {
		t.Fatalf("unexpected error text %q", err)
	}
}

func TestDecodeTokenOnlySnapshot(t *testing.T) {
	data, err := Encode(&Snapshot{Token: "t1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	snap, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Token != "t1" || snap.User != nil {
		t.Fatalf("expected token-only snapshot, got %+v", snap)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	data, err := Encode(testSnapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(append(data, 0)); !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("expected corrupt error for trailing bytes, got %v", err)
	}
}

func encodeLegacyV2(t *testing.T, token string, u *User) []byte {
	t.Helper()
	data := encodeLegacyV1(t, token, u)
	data[0] = snapshotFormatVersionV2
	buf := bytes.NewBuffer(data)
	buf.WriteByte(byte(len(u.Plan)))
	buf.WriteString(u.Plan)
	for _, v := range []int64{u.Credits, unixMilli(u.CreatedAt), unixMilli(u.UpdatedAt), 0} {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			t.Fatalf("write int64: %v", err)
		}
	}
	return buf.Bytes()
}

func TestEncodeRejectsOversizedFields(t *testing.T) {
	snap := testSnapshot()
	snap.User.DisplayName = strings.Repeat("x", 1<<16)
	if _, err := Encode(snap); err == nil {
		t.Fatal("expected error for oversized display name")
	}
}

func TestLongMultibyteDisplayNameRoundTrip(t *testing.T) {
	snap := testSnapshot()
	snap.User.DisplayName = strings.Repeat("写真スタジオ", 15)
	if len(snap.User.DisplayName) <= 255 {
		t.Fatalf("display name only %d bytes", len(snap.User.DisplayName))
	}

	data, err := Encode(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.User == nil || got.User.DisplayName != snap.User.DisplayName {
		t.Fatalf("display name lost in round trip: %+v", got.User)
	}
	if got.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("expected schema %d, got %d", CurrentSchemaVersion, got.SchemaVersion)
	}
}

func TestDecodeLegacyV2Snapshot(t *testing.T) {
	u := testSnapshot().User
	snap, err := Decode(encodeLegacyV2(t, "t2", u))
	if err != nil {
		t.Fatalf("decode v2: %v", err)
	}
	if snap.SchemaVersion != snapshotFormatVersionV2 {
		t.Fatalf("expected schema %d, got %d", snapshotFormatVersionV2, snap.SchemaVersion)
	}
	if snap.Token != "t2" || snap.User == nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.User.Email != u.Email || snap.User.Plan != u.Plan || snap.User.Credits != u.Credits {
		t.Fatalf("v2 user fields not decoded: %+v", snap.User)
	}
}

func TestEncodeAcceptsLongJWT(t *testing.T) {
	snap := testSnapshot()
	snap.Token = strings.Repeat("a", 4096)
	data, err := Encode(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Token != snap.Token {
		t.Fatal("long token did not survive round trip")
	}
}

// FuzzSnapshotDecode exercises the binary decoder with arbitrary inputs.
func FuzzSnapshotDecode(f *testing.F) {
	encoded, err := Encode(testSnapshot())
	if err == nil {
		f.Add(encoded)
	}

	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{1})
	f.Add([]byte{2, 0, 0, 0})
	f.Add([]byte{255, 255, 255})

	if len(encoded) > 10 {
		f.Add(encoded[:10])
	}
	if len(encoded) > 30 {
		f.Add(encoded[:30])
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := Decode(data)
		if err != nil {
			return
		}
		if s.SchemaVersion == CurrentSchemaVersion {
			_, _ = Encode(s)
		}
	})
}

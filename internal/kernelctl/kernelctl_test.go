package kernelctl

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// TestReadString_Trims verifies kernel-file newline handling.
func TestReadString_Trims(t *testing.T) {
	path := writeFile(t, t.TempDir(), "version", "2.1.0\n")
	got, err := readString(path)
	if err != nil {
		t.Fatalf("readString failed: %v", err)
	}
	if got != "2.1.0" {
		t.Errorf("readString = %q, want %q", got, "2.1.0")
	}
}

func TestReadInt(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "flag", "1\n")
	v, err := readInt(path)
	if err != nil || v != 1 {
		t.Errorf("readInt = (%d, %v), want (1, nil)", v, err)
	}

	bad := writeFile(t, dir, "bad", "not a number\n")
	if _, err := readInt(bad); err == nil {
		t.Error("readInt accepted garbage")
	}
	if _, err := readInt(filepath.Join(dir, "absent")); err == nil {
		t.Error("readInt accepted a missing file")
	}
}

// TestReadUint_ZeroOnError: counters treat absence and garbage as zero.
func TestReadUint_ZeroOnError(t *testing.T) {
	dir := t.TempDir()
	if got := readUint(writeFile(t, dir, "hit", "12345\n")); got != 12345 {
		t.Errorf("readUint = %d, want 12345", got)
	}
	if got := readUint(filepath.Join(dir, "absent")); got != 0 {
		t.Errorf("readUint(absent) = %d, want 0", got)
	}
	if got := readUint(writeFile(t, dir, "bad", "x\n")); got != 0 {
		t.Errorf("readUint(garbage) = %d, want 0", got)
	}
}

func TestWriteInt_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disable")
	if err := writeInt(path, 1); err != nil {
		t.Fatalf("writeInt failed: %v", err)
	}
	v, err := readInt(path)
	if err != nil || v != 1 {
		t.Errorf("roundtrip = (%d, %v), want (1, nil)", v, err)
	}
}

// TestCounters_Sub verifies delta arithmetic.
func TestCounters_Sub(t *testing.T) {
	cur := Counters{Hit: 100, Fallthrough: 50, L2Hit: 30, LLCHit: 20}
	prev := Counters{Hit: 40, Fallthrough: 10, L2Hit: 30, LLCHit: 5}
	got := cur.Sub(prev)
	want := Counters{Hit: 60, Fallthrough: 40, L2Hit: 0, LLCHit: 15}
	if got != want {
		t.Errorf("Sub = %+v, want %+v", got, want)
	}
}

func TestFeatureState_String(t *testing.T) {
	cases := map[FeatureState]string{
		FeatureOff:     "off",
		FeatureOn:      "on",
		FeatureUnknown: "unknown",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", st, got, want)
		}
	}
}

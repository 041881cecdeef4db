package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingFileKeepsBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "referee.log")
	rf, err := openRotatingFile(path, 1, 2)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rf.Close()

	chunk := make([]byte, 768*1024)
	for i := 0; i < 4; i++ {
		if _, err := rf.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}
	for _, name := range []string{path, path + ".1", path + ".2"} {
		st, err := os.Stat(name)
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if st.Size() != int64(len(chunk)) {
			t.Fatalf("%s size = %d, want %d", name, st.Size(), len(chunk))
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("backup past the limit should not exist, err = %v", err)
	}
}

func TestRotatingFileWithoutBackupsTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "referee.log")
	rf, err := openRotatingFile(path, 1, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rf.Close()

	chunk := make([]byte, 768*1024)
	if _, err := rf.Write(chunk); err != nil {
		t.Fatalf("write first chunk: %v", err)
	}
	st, err := os.Stat(path)
	if err != nil || st.Size() != int64(len(chunk)) {
		t.Fatalf("size after first chunk = %v, err = %v", st, err)
	}
	if _, err := rf.Write(chunk); err != nil {
		t.Fatalf("write second chunk: %v", err)
	}
	if _, err := rf.Write(chunk[:10]); err != nil {
		t.Fatalf("write tail: %v", err)
	}
	st, err = os.Stat(path)
	if err != nil || st.Size() != int64(len(chunk)+10) {
		t.Fatalf("size after truncate = %v, err = %v", st, err)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Fatal("no backup expected")
	}
}

func TestRotatingFileBelowLimitDoesNotRotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "referee.log")
	rf, err := openRotatingFile(path, 1, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rf.Close()

	chunk := make([]byte, 768*1024)
	_, _ = rf.Write(chunk)
	_, _ = rf.Write(chunk[:10])
	st, err := os.Stat(path)
	if err != nil || st.Size() != int64(len(chunk)+10) {
		t.Fatalf("size below limit = %v, err = %v", st, err)
	}
}

func TestRotatingFileReopensAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "referee.log")
	rf, err := openRotatingFile(path, 1, 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = rf.Close()
	if _, err := rf.Write([]byte("x\n")); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	_ = rf.Close()
	data, _ := os.ReadFile(path)
	if string(data) != "x\n" {
		t.Fatalf("log = %q, want x", data)
	}
}

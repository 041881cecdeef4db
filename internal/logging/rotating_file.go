package logging

import (
	"fmt"
	"os"
	"sync"
)

// rotatingFile appends to path. A write that would cross maxBytes first
// shifts path to path.1, path.1 to path.2 and so on, dropping whatever falls
// past the last backup.
type rotatingFile struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	backups  int
	f        *os.File
	written  int64
}

func openRotatingFile(path string, maxMB, backups int) (*rotatingFile, error) {
	if maxMB <= 0 {
		maxMB = 10
	}
	if backups < 0 {
		backups = 0
	}
	rf := &rotatingFile{path: path, maxBytes: int64(maxMB) << 20, backups: backups}
	if err := rf.reopen(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.f == nil {
		if err := rf.reopen(); err != nil {
			return 0, err
		}
	}
	if rf.written > 0 && rf.written+int64(len(p)) > rf.maxBytes {
		if err := rf.shift(); err != nil {
			return 0, err
		}
	}
	n, err := rf.f.Write(p)
	rf.written += int64(n)
	return n, err
}

func (rf *rotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.f == nil {
		return nil
	}
	err := rf.f.Close()
	rf.f = nil
	return err
}

func (rf *rotatingFile) backupName(i int) string {
	return fmt.Sprintf("%s.%d", rf.path, i)
}

func (rf *rotatingFile) shift() error {
	_ = rf.f.Close()
	rf.f = nil
	if rf.backups == 0 {
		if err := os.Remove(rf.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return rf.reopen()
	}
	for i := rf.backups - 1; i >= 1; i-- {
		if err := os.Rename(rf.backupName(i), rf.backupName(i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if err := os.Rename(rf.path, rf.backupName(1)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return rf.reopen()
}

func (rf *rotatingFile) reopen() error {
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	rf.f = f
	rf.written = st.Size()
	return nil
}

package persistence

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/hupe1980/cubego/compress"
)

// SaveFile writes the snapshot to filename.
//
// The artifact is written to a temp file in the same directory and renamed
// into place, so readers never observe a partially written file. The file
// handle is released on every exit path.
func SaveFile(filename string, snap *Snapshot, codec compress.Codec) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0644)

	// Buffered writer batches the many small section writes.
	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := Write(buf, snap, codec); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Atomically replace target.
	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// LoadFile reads and validates a snapshot from filename.
//
// The buffered reader sits below the checksum reader used inside Read, so
// buffering never pulls body bytes past the trailer boundary.
func LoadFile(filename string) (*Snapshot, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(bufio.NewReaderSize(f, 256*1024))
}

package archive

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/hvariant/shreddit2/internal/errors"
)

// WriteJSON writes records to path as a single JSON array.
// The array is built in memory, written to a temp file beside path, then renamed
// into place so an existing file is either fully replaced or left untouched.
func WriteJSON[T any](path string, records []T) error {
	if path == "" {
		return errors.NewInvalidRequest("archive path is required")
	}
	if records == nil {
		records = []T{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return errors.NewInternal(fmt.Errorf("encode %s: %w", path, err))
	}
	// Encode appends a newline; the file holds exactly the array.
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create archive file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before rename (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close archive file: %w", err))
	}
	file = nil

	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest(fmt.Sprintf("archive path is a symlink: %s", path))
	}

	if runtime.GOOS == "windows" {
		// os.Rename cannot replace an existing file here.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.NewInternal(fmt.Errorf("failed to replace %s: %w", path, err))
		}
	}
	if err := os.Rename(tempPath, path); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to finalize archive: %w", err))
	}

	success = true
	return nil
}

package mkfs

import (
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/zeebo/blake3"
)

func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Digest returns the hex encoded BLAKE3 hash of the file's content.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func provideDir(path string, mode fs.FileMode) error {
	if mode == 0 {
		return nil
	}
	return os.MkdirAll(path, mode)
}

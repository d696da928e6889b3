// Package util reads the hand-edited data files the bot is deployed with.
package util

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

// MaxDataFileSize bounds data files read into memory.
const MaxDataFileSize = 16 << 20

var (
	ErrBinaryFile = errors.New("file looks binary")
	ErrEmptyFile  = errors.New("file is empty")
	ErrFileTooBig = errors.New("file is too large")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTextFile reads a UTF-8 data file. A leading BOM is dropped and invalid
// sequences are replaced with U+FFFD. Files containing NUL bytes, blank
// files and files over MaxDataFileSize are rejected.
func ReadTextFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, MaxDataFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(content) > MaxDataFileSize {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", path, ErrFileTooBig, MaxDataFileSize)
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrBinaryFile)
	}
	return cleanText(content, path)
}

func cleanText(content []byte, src string) ([]byte, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		log.Warnf("%s contains invalid UTF-8, replacing invalid sequences", src)
		content = bytes.ToValidUTF8(content, []byte(string(utf8.RuneError)))
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("%s: %w", src, ErrEmptyFile)
	}
	return content, nil
}

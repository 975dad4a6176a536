package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// defaultEncodings is the order content decoding is attempted in.
var defaultEncodings = []string{"utf-8", "utf-8-sig", "latin-1", "iso-8859-1", "cp1252", "ascii"}

const (
	// Files larger than this are read in fixed-size chunks instead of one
	// allocation.
	largeFileSize = 8 << 20
	readChunkSize = 1 << 20
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileReader reads file content trying an ordered list of text encodings with
// strict decoding; the first that succeeds wins.
type FileReader struct {
	encodings []string
	reporter  Reporter
}

// NewFileReader builds a reader for the given encoding order; nil or empty
// means the default order.
func NewFileReader(encodings []string, rep Reporter) *FileReader {
	if len(encodings) == 0 {
		encodings = defaultEncodings
	}
	if rep == nil {
		rep = nopReporter{}
	}
	return &FileReader{encodings: encodings, reporter: rep}
}

// GetContent returns a file's decoded content. The second return is false
// when the file is binary, empty or all-whitespace once decoded, unreadable,
// or decodable by none of the configured encodings.
func (r *FileReader) GetContent(path string) (string, bool) {
	if isBinaryFile(path) {
		return "", false
	}

	data, err := readFileMaybeChunked(path)
	if err != nil {
		r.reporter.Warnf("error reading %s: %v", path, err)
		return "", false
	}

	for _, enc := range r.encodings {
		content, err := decodeStrict(enc, data)
		if err != nil {
			continue
		}
		if strings.TrimSpace(content) == "" {
			return "", false
		}
		return content, true
	}

	r.reporter.Warnf("skipping %s: could not decode with any of %s",
		path, strings.Join(r.encodings, ", "))
	return "", false
}

func readFileMaybeChunked(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() <= largeFileSize {
		return os.ReadFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	buf.Grow(int(info.Size()))
	chunk := make([]byte, readChunkSize)
	for {
		n, err := f.Read(chunk)
		buf.Write(chunk[:n])
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// decodeStrict decodes data with the named encoding, failing on any byte the
// encoding does not define rather than substituting replacement runes.
func decodeStrict(encoding string, data []byte) (string, error) {
	switch strings.ToLower(encoding) {
	case "utf-8":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid utf-8")
		}
		return string(data), nil
	case "utf-8-sig":
		if !bytes.HasPrefix(data, utf8BOM) {
			return "", fmt.Errorf("missing utf-8 byte order mark")
		}
		rest := data[len(utf8BOM):]
		if !utf8.Valid(rest) {
			return "", fmt.Errorf("invalid utf-8 after byte order mark")
		}
		return string(rest), nil
	case "latin-1", "iso-8859-1":
		return decodeCharmap(charmap.ISO8859_1, data)
	case "cp1252", "windows-1252":
		return decodeCharmap(charmap.Windows1252, data)
	case "ascii", "us-ascii":
		for i, b := range data {
			if b > 0x7F {
				return "", fmt.Errorf("non-ascii byte 0x%02x at offset %d", b, i)
			}
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
}

func decodeCharmap(cm *charmap.Charmap, data []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(data))
	for i, b := range data {
		r := cm.DecodeByte(b)
		if r == utf8.RuneError {
			return "", fmt.Errorf("byte 0x%02x at offset %d not defined in %s", b, i, cm)
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

//go:build windows

package exr

import "os"

// mappedFile holds the contents of a file. On Windows the file is read
// into memory instead of being mapped.
type mappedFile struct {
	data []byte
}

func openMapped(path string) (*mappedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &mappedFile{data: data}, nil
}

// Bytes returns the file contents.
func (m *mappedFile) Bytes() []byte {
	return m.data
}

// Close releases the contents.
func (m *mappedFile) Close() error {
	m.data = nil
	return nil
}

//go:build !windows

package exr

import (
	"os"
	"syscall"
)

// mappedFile exposes the contents of a file as a read-only byte slice
// backed by a memory mapping.
type mappedFile struct {
	data []byte
	file *os.File
}

// openMapped maps the file at path into memory.
func openMapped(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &mappedFile{file: f}, nil
	}
	if int64(int(size)) != size {
		f.Close()
		return nil, ErrImageTooLarge
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &mappedFile{data: data, file: f}, nil
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (m *mappedFile) Bytes() []byte {
	return m.data
}

// Close unmaps the file and closes the underlying file handle.
func (m *mappedFile) Close() error {
	if m.data != nil {
		if err := syscall.Munmap(m.data); err != nil {
			return err
		}
		m.data = nil
	}
	if m.file != nil {
		err := m.file.Close()
		m.file = nil
		return err
	}
	return nil
}

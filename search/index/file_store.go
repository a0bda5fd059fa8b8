package index

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

func createFile(filename string) (*os.File, error) {
	return os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
}

// mappedFile is a read-only memory mapping of a whole segment file.
type mappedFile struct {
	data mmap.MMap
	file *os.File
}

func openMappedFile(filename string) (*mappedFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	// mmap refuses empty files
	if info.Size() == 0 {
		return &mappedFile{file: file}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap %s: %w", filename, err)
	}

	return &mappedFile{data: data, file: file}, nil
}

func (m *mappedFile) Close() error {
	if m.data != nil {
		if err := m.data.Unmap(); err != nil {
			_ = m.file.Close()
			return err
		}
		m.data = nil
	}

	return m.file.Close()
}

type FileReader struct {
	mapped *mappedFile
}

func newFileReader(filename string) (*FileReader, error) {
	mapped, err := openMappedFile(filename)
	if err != nil {
		return nil, err
	}

	return &FileReader{mapped: mapped}, nil
}

func (reader *FileReader) Slice(start, end uint64) ([]byte, error) {
	if start > end || end > uint64(len(reader.mapped.data)) {
		return nil, fmt.Errorf("slice [%d, %d) out of file bounds %d", start, end, len(reader.mapped.data))
	}

	return reader.mapped.data[start:end], nil
}

func (reader *FileReader) Close() error {
	return reader.mapped.Close()
}

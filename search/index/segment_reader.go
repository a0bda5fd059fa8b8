package index

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// IsFieldNotIndexed reports whether err comes from opening a field that has
// no component files in the segment.
func IsFieldNotIndexed(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// SegmentReader gives access to the component files of one segment. Readers
// are opened lazily and shared; it is safe for concurrent use.
type SegmentReader struct {
	aliveBitset *AliveBitset
	deleted     *roaring.Bitmap
	directory   string
	Id          uint32
	IdString    string
	maxDoc      uint32

	mutex              sync.Mutex
	dictionaryReaders  map[string]*DictionaryReader
	fieldFreqsReaders  map[string]*FieldFreqsReader
	fieldLengthReaders map[string]*FieldLengthReader
	storeReader        *StoreReader
}

func newSegmentReader(directory string, segment CommitSegment, deleted *roaring.Bitmap) *SegmentReader {
	segmentId := formatId(segment.Id)

	var aliveBitset *AliveBitset
	if !deleted.IsEmpty() {
		aliveBitset = newAliveBitset(deleted, segment.MaxDoc)
	}

	return &SegmentReader{
		aliveBitset:        aliveBitset,
		deleted:            deleted,
		directory:          directory,
		Id:                 segment.Id,
		IdString:           segmentId,
		maxDoc:             segment.MaxDoc,
		dictionaryReaders:  make(map[string]*DictionaryReader),
		fieldFreqsReaders:  make(map[string]*FieldFreqsReader),
		fieldLengthReaders: make(map[string]*FieldLengthReader),
		storeReader:        newStoreReader(directory, segmentId),
	}
}

// AliveBitset returns nil when no document of the segment is deleted.
func (reader *SegmentReader) AliveBitset() *AliveBitset {
	return reader.aliveBitset
}

// MaxDoc is one more than the largest document id of the segment, deleted
// documents included.
func (reader *SegmentReader) MaxDoc() uint32 {
	return reader.maxDoc
}

func (reader *SegmentReader) NumDocs() uint32 {
	return reader.maxDoc - uint32(reader.deleted.GetCardinality())
}

func (reader *SegmentReader) IsDeleted(docId DocumentId) bool {
	return reader.deleted.Contains(uint32(docId))
}

func openCached[T any](reader *SegmentReader, cache map[string]T, fieldName string, open func() (T, error)) (T, error) {
	reader.mutex.Lock()
	defer reader.mutex.Unlock()

	value, exists := cache[fieldName]
	if exists {
		return value, nil
	}

	value, err := open()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("segment %s field %s: %w", reader.IdString, fieldName, err)
	}

	cache[fieldName] = value
	return value, nil
}

func (reader *SegmentReader) DictionaryReader(fieldName string) (*DictionaryReader, error) {
	return openCached(reader, reader.dictionaryReaders, fieldName, func() (*DictionaryReader, error) {
		return newDictionaryReader(reader.directory, reader.IdString, fieldName)
	})
}

func (reader *SegmentReader) FieldFreqsReader(fieldName string) (*FieldFreqsReader, error) {
	return openCached(reader, reader.fieldFreqsReaders, fieldName, func() (*FieldFreqsReader, error) {
		return newFieldFreqsReader(reader.directory, reader.IdString, fieldName)
	})
}

func (reader *SegmentReader) FieldLengthReader(fieldName string) (*FieldLengthReader, error) {
	return openCached(reader, reader.fieldLengthReaders, fieldName, func() (*FieldLengthReader, error) {
		return newFieldLengthReader(reader.directory, reader.IdString, fieldName)
	})
}

func (reader *SegmentReader) FieldStats(fieldName string) (FieldStats, error) {
	stats, err := readFieldStats(reader.directory, reader.IdString, fieldName)
	if err != nil {
		return FieldStats{}, fmt.Errorf("segment %s field %s: %w", reader.IdString, fieldName, err)
	}

	return stats, nil
}

// TermInfo returns nil, nil when the segment has the field but not the term.
func (reader *SegmentReader) TermInfo(fieldName string, term []byte) (*TermInfo, error) {
	dictionaryReader, err := reader.DictionaryReader(fieldName)
	if err != nil {
		return nil, err
	}

	termInfo, err := dictionaryReader.Get(term)
	if err != nil {
		return nil, fmt.Errorf("segment %s field %s: %w", reader.IdString, fieldName, err)
	}

	return termInfo, nil
}

func (reader *SegmentReader) Value(fieldName string, docId DocumentId) ([]byte, error) {
	fieldStoreReader, err := reader.storeReader.GetFieldStoreReader(fieldName)
	if err != nil {
		return nil, fmt.Errorf("segment %s field %s: %w", reader.IdString, fieldName, err)
	}

	return fieldStoreReader.Value(docId), nil
}

func (reader *SegmentReader) Close() error {
	reader.mutex.Lock()
	defer reader.mutex.Unlock()

	errs := make([]error, 0)

	for _, dictionaryReader := range reader.dictionaryReaders {
		errs = append(errs, dictionaryReader.Close())
	}
	for _, fieldFreqsReader := range reader.fieldFreqsReaders {
		errs = append(errs, fieldFreqsReader.Close())
	}
	for _, fieldLengthReader := range reader.fieldLengthReaders {
		errs = append(errs, fieldLengthReader.Close())
	}
	errs = append(errs, reader.storeReader.Close())

	clear(reader.dictionaryReaders)
	clear(reader.fieldFreqsReaders)
	clear(reader.fieldLengthReaders)

	return errors.Join(errs...)
}

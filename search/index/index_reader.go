package index

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Global doc ids put the segment id in the high 32 bits and the local id in
// the low 32 bits.
func ToGlobalDocId(segmentId uint32, localDocId DocumentId) uint64 {
	return uint64(segmentId)<<32 | uint64(localDocId)
}

func ToSegmentId(docId uint64) uint32 {
	return uint32(docId >> 32)
}

func toLocalDocId(docId uint64) DocumentId {
	return DocumentId(uint32(docId))
}

func ToLocalDocId(docId uint64) DocumentId {
	return toLocalDocId(docId)
}

// IndexReader is a point in time view of the committed segments.
type IndexReader struct {
	SegmentReaders []*SegmentReader
}

func NewIndexReader(directory string) (*IndexReader, error) {
	commit, err := readCommit(directory)
	if err != nil {
		return nil, err
	}

	deletedReader, err := openDeletedReader(directory, commit)
	if err != nil {
		return nil, err
	}
	defer deletedReader.Close()

	segmentReaders := make([]*SegmentReader, 0, len(commit.Segments))

	for _, segment := range commit.Segments {
		deletedDocIds, err := deletedReader.GetDeletedDocIdsForSegment(segment.Id)
		if err != nil {
			return nil, err
		}

		segmentReaders = append(segmentReaders, newSegmentReader(directory, segment, deletedDocIds))
	}

	return &IndexReader{
		SegmentReaders: segmentReaders,
	}, nil
}

func (reader *IndexReader) SegmentReader(segmentId uint32) (*SegmentReader, bool) {
	for _, segmentReader := range reader.SegmentReaders {
		if segmentReader.Id == segmentId {
			return segmentReader, true
		}
	}

	return nil, false
}

func (reader *IndexReader) NumDocs() uint64 {
	numDocs := uint64(0)
	for _, segmentReader := range reader.SegmentReaders {
		numDocs += uint64(segmentReader.NumDocs())
	}

	return numDocs
}

// SearchByExactValues returns the global ids of the live documents whose
// field holds one of values, as a single token.
func (reader *IndexReader) SearchByExactValues(fieldName string, values [][]byte) ([]uint64, error) {
	results := make([]uint64, 0, 100)

	for _, segmentReader := range reader.SegmentReaders {
		fieldFreqsReader, err := segmentReader.FieldFreqsReader(fieldName)
		if IsFieldNotIndexed(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		segmentDocIds := roaring.New()

		for _, value := range values {
			termInfo, err := segmentReader.TermInfo(fieldName, value)
			if err != nil {
				return nil, err
			}
			if termInfo == nil {
				continue
			}

			it, err := fieldFreqsReader.TermFreqsIterator(termInfo)
			if err != nil {
				return nil, err
			}

			for docId := it.Doc(); docId != Terminated; docId = it.Advance() {
				if !segmentReader.IsDeleted(docId) {
					segmentDocIds.Add(uint32(docId))
				}
			}
		}

		iterator := segmentDocIds.Iterator()
		for iterator.HasNext() {
			results = append(results, ToGlobalDocId(segmentReader.Id, DocumentId(iterator.Next())))
		}
	}

	return results, nil
}

// Value returns the stored value of fieldName for a global doc id.
func (reader *IndexReader) Value(fieldName string, docId uint64) ([]byte, error) {
	segmentReader, exists := reader.SegmentReader(ToSegmentId(docId))
	if !exists {
		return nil, fmt.Errorf("segment %d not found", ToSegmentId(docId))
	}

	return segmentReader.Value(fieldName, toLocalDocId(docId))
}

func (reader *IndexReader) Close() error {
	errs := make([]error, 0, len(reader.SegmentReaders))
	for _, segmentReader := range reader.SegmentReaders {
		errs = append(errs, segmentReader.Close())
	}

	return errors.Join(errs...)
}

package index

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/larose/lynxsearch/search/utils"
)

// LivenessSet tells whether a document of a segment has not been deleted.
type LivenessSet interface {
	IsAlive(docId DocumentId) bool
}

// AliveBitset is the liveness set of a segment with at least one deleted
// document.
type AliveBitset struct {
	deleted *roaring.Bitmap
	maxDoc  uint32
}

func newAliveBitset(deleted *roaring.Bitmap, maxDoc uint32) *AliveBitset {
	return &AliveBitset{deleted: deleted, maxDoc: maxDoc}
}

func (b *AliveBitset) IsAlive(docId DocumentId) bool {
	return uint32(docId) < b.maxDoc && !b.deleted.Contains(uint32(docId))
}

func (b *AliveBitset) NumDeleted() uint32 {
	return uint32(b.deleted.GetCardinality())
}

func (b *AliveBitset) NumAlive() uint32 {
	return b.maxDoc - b.NumDeleted()
}

func deletedBasename(directory, deletedId string) string {
	return filepath.Join(directory, "deleted."+deletedId)
}

type DeletedWriter struct {
	deletedDocIdsBySegment map[uint32]*roaring.Bitmap
}

func newDeletedWriter(deletedDocIdsBySegment map[uint32]*roaring.Bitmap) *DeletedWriter {
	return &DeletedWriter{deletedDocIdsBySegment: deletedDocIdsBySegment}
}

func (writer *DeletedWriter) Write(directory string, deletedId string) error {
	kvStoreWriter, err := newKVStoreWriter(deletedBasename(directory, deletedId))
	if err != nil {
		return err
	}

	sortedSegmentIds := make([]uint32, 0, len(writer.deletedDocIdsBySegment))
	for segmentId := range writer.deletedDocIdsBySegment {
		sortedSegmentIds = append(sortedSegmentIds, segmentId)
	}
	slices.Sort(sortedSegmentIds)

	for _, segmentId := range sortedSegmentIds {
		deletedDocsForSegment := writer.deletedDocIdsBySegment[segmentId]
		deletedDocsForSegment.RunOptimize()

		buffer, err := deletedDocsForSegment.ToBytes()
		if err != nil {
			_ = kvStoreWriter.Close()
			return err
		}

		if err := kvStoreWriter.Append(utils.Uint32ToBytes(segmentId), buffer); err != nil {
			_ = kvStoreWriter.Close()
			return err
		}
	}

	return kvStoreWriter.Close()
}

type DeletedReader interface {
	// GetDeletedDocIdsForSegment returns an empty bitmap for a segment
	// without deletions.
	GetDeletedDocIdsForSegment(segmentId uint32) (*roaring.Bitmap, error)
	Close() error
}

type NullDeletedReader struct {
}

func (reader NullDeletedReader) GetDeletedDocIdsForSegment(segmentId uint32) (*roaring.Bitmap, error) {
	return roaring.New(), nil
}

func (reader NullDeletedReader) Close() error {
	return nil
}

type FileDeletedReader struct {
	kvStoreReader *KVStoreReader
}

func newFileDeletedReader(directory, deletedId string) (*FileDeletedReader, error) {
	kvStoreReader, err := newKVStoreReader(deletedBasename(directory, deletedId))
	if err != nil {
		return nil, err
	}

	return &FileDeletedReader{kvStoreReader: kvStoreReader}, nil
}

func (reader *FileDeletedReader) GetDeletedDocIdsForSegment(segmentId uint32) (*roaring.Bitmap, error) {
	deletedDocs := roaring.New()

	value := reader.kvStoreReader.Get(utils.Uint32ToBytes(segmentId))
	if value == nil {
		return deletedDocs, nil
	}

	// The value points into the mapping, the bitmap must own its memory
	if err := deletedDocs.UnmarshalBinary(value); err != nil {
		return nil, fmt.Errorf("deleted docs of segment %d: %w", segmentId, err)
	}

	return deletedDocs, nil
}

func (reader *FileDeletedReader) Close() error {
	return reader.kvStoreReader.Close()
}

func openDeletedReader(directory string, commit *Commit) (DeletedReader, error) {
	if commit.DeletedId == nil {
		return NullDeletedReader{}, nil
	}

	return newFileDeletedReader(directory, formatId(*commit.DeletedId))
}

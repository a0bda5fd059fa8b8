package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/exp/rand"
)

type CommitSegment struct {
	Id     uint32 `json:"id"`
	MaxDoc uint32 `json:"maxDoc"`
}

type Commit struct {
	Segments  []CommitSegment `json:"segments"`
	DeletedId *uint32         `json:"deletedId,omitempty"`
}

func formatId(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

func readCommit(directory string) (*Commit, error) {
	commitFile, err := os.Open(filepath.Join(directory, "commit"))
	if os.IsNotExist(err) {
		return &Commit{Segments: make([]CommitSegment, 0)}, nil
	}
	if err != nil {
		return nil, err
	}
	defer commitFile.Close()

	var commit Commit
	if err := json.NewDecoder(commitFile).Decode(&commit); err != nil {
		return nil, fmt.Errorf("decode commit: %w", err)
	}

	return &commit, nil
}

type IndexWriter struct {
	directory string
	mutex     sync.Mutex
	tokenizer *StandardTokenizer
}

func NewIndexWriter(directory string) *IndexWriter {
	return &IndexWriter{
		directory: directory,
		tokenizer: NewStandardTokenizer(),
	}
}

// AddDocuments writes docs as a new segment and commits it. Document i of
// docs gets the local id i.
func (writer *IndexWriter) AddDocuments(docs []Document) error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	segmentComponentWriters := []SegmentComponentWriter{newInvertedIndexWriter(), newStoreWriter()}

	for docId, doc := range docs {
		for _, segmentComponentWriter := range segmentComponentWriters {
			segmentComponentWriter.Doc(DocumentId(docId))
		}

		for _, field := range doc {
			if err := writer.addField(segmentComponentWriters, field); err != nil {
				return err
			}
		}
	}

	commit, err := readCommit(writer.directory)
	if err != nil {
		return err
	}

	newSegmentId := writer.newSegmentId(commit)

	for _, segmentComponentWriter := range segmentComponentWriters {
		if err := segmentComponentWriter.Write(writer.directory, formatId(newSegmentId)); err != nil {
			return fmt.Errorf("write segment %d: %w", newSegmentId, err)
		}
	}

	segments := append(commit.Segments, CommitSegment{Id: newSegmentId, MaxDoc: uint32(len(docs))})

	return writer.commit(segments, commit.DeletedId)
}

func (writer *IndexWriter) addField(segmentComponentWriters []SegmentComponentWriter, field Field) error {
	for _, segmentComponentWriter := range segmentComponentWriters {
		segmentComponentWriter.Field(field.Name, field.Value)
	}

	switch field.FieldType {
	case TextFieldType:
		writer.tokenizer.Reset(field.Value)
		for {
			token, ok := writer.tokenizer.NextToken()
			if !ok {
				break
			}

			for _, segmentComponentWriter := range segmentComponentWriters {
				segmentComponentWriter.Term(token.Text)
			}
		}
	case ByteFieldType:
		for _, segmentComponentWriter := range segmentComponentWriters {
			segmentComponentWriter.Term(field.Value)
		}
	default:
		return fmt.Errorf("unknown field type %d", field.FieldType)
	}

	for _, segmentComponentWriter := range segmentComponentWriters {
		segmentComponentWriter.EndField()
	}

	return nil
}

func (writer *IndexWriter) newSegmentId(commit *Commit) uint32 {
	for {
		id := rand.Uint32()

		taken := false
		for _, segment := range commit.Segments {
			taken = taken || segment.Id == id
		}

		if !taken {
			return id
		}
	}
}

func (writer *IndexWriter) commit(segments []CommitSegment, deletedId *uint32) error {
	tempFilePath := filepath.Join(writer.directory, ".commit")
	tempFile, err := os.Create(tempFilePath)
	if err != nil {
		return err
	}

	commit := Commit{
		Segments:  segments,
		DeletedId: deletedId,
	}

	if err := json.NewEncoder(tempFile).Encode(commit); err != nil {
		_ = tempFile.Close()
		return err
	}

	if err := tempFile.Close(); err != nil {
		return err
	}

	return os.Rename(tempFilePath, filepath.Join(writer.directory, "commit"))
}

// DeleteDocuments marks as deleted every document whose fieldName holds one
// of values, and commits a new generation of deleted bitmaps.
func (writer *IndexWriter) DeleteDocuments(fieldName string, values [][]byte) error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	indexReader, err := NewIndexReader(writer.directory)
	if err != nil {
		return err
	}
	defer indexReader.Close()

	// TODO: merge segments whose deleted ratio is high instead of only
	// accumulating bitmaps
	docIdsToDelete, err := indexReader.SearchByExactValues(fieldName, values)
	if err != nil {
		return err
	}

	commit, err := readCommit(writer.directory)
	if err != nil {
		return err
	}

	deletedReader, err := openDeletedReader(writer.directory, commit)
	if err != nil {
		return err
	}
	defer deletedReader.Close()

	nextDeletedId := uint32(0)
	if commit.DeletedId != nil {
		nextDeletedId = *commit.DeletedId + 1
	}

	deletedDocIdsBySegment := make(map[uint32]*roaring.Bitmap, len(commit.Segments))
	for _, segment := range commit.Segments {
		deletedDocIds, err := deletedReader.GetDeletedDocIdsForSegment(segment.Id)
		if err != nil {
			return err
		}

		deletedDocIdsBySegment[segment.Id] = deletedDocIds
	}

	for _, docId := range docIdsToDelete {
		deletedDocIdsBySegment[ToSegmentId(docId)].Add(uint32(toLocalDocId(docId)))
	}

	if err := newDeletedWriter(deletedDocIdsBySegment).Write(writer.directory, formatId(nextDeletedId)); err != nil {
		return fmt.Errorf("write deleted %d: %w", nextDeletedId, err)
	}

	return writer.commit(commit.Segments, &nextDeletedId)
}

package index

import (
	"testing"

	"github.com/larose/lynxsearch/search/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(id uint64, body string) Document {
	return Document{
		{Name: "id", FieldType: ByteFieldType, Value: utils.Uint64ToBytes(id)},
		{Name: "body", FieldType: TextFieldType, Value: []byte(body)},
	}
}

func TestIndexWriterRoundTrip(t *testing.T) {
	directory := t.TempDir()
	writer := NewIndexWriter(directory)

	require.NoError(t, writer.AddDocuments([]Document{
		testDocument(10, "the quick brown fox"),
		testDocument(11, "the lazy dog"),
		{{Name: "id", FieldType: ByteFieldType, Value: utils.Uint64ToBytes(12)}},
	}))
	require.NoError(t, writer.AddDocuments([]Document{
		testDocument(20, "The fox, the fox!"),
	}))

	indexReader, err := NewIndexReader(directory)
	require.NoError(t, err)
	defer indexReader.Close()

	require.Len(t, indexReader.SegmentReaders, 2)
	assert.Equal(t, uint64(4), indexReader.NumDocs())

	first := indexReader.SegmentReaders[0]
	assert.Equal(t, uint32(3), first.MaxDoc())
	assert.Nil(t, first.AliveBitset())

	stats, err := first.FieldStats("body")
	require.NoError(t, err)
	assert.Equal(t, FieldStats{DocCount: 2, SumTermFreq: 7}, stats)

	lengths, err := first.FieldLengthReader("body")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), lengths.DocCount())
	assert.Equal(t, uint32(4), lengths.Length(0))
	assert.Equal(t, uint32(3), lengths.Length(1))
	assert.Equal(t, uint32(0), lengths.Length(2))

	termInfo, err := first.TermInfo("body", []byte("the"))
	require.NoError(t, err)
	require.NotNil(t, termInfo)
	assert.Equal(t, uint32(2), termInfo.DocFreq)

	termInfo, err = first.TermInfo("body", []byte("cat"))
	require.NoError(t, err)
	assert.Nil(t, termInfo)

	second := indexReader.SegmentReaders[1]
	freqsReader, err := second.FieldFreqsReader("body")
	require.NoError(t, err)
	termInfo, err = second.TermInfo("body", []byte("fox"))
	require.NoError(t, err)
	it, err := freqsReader.TermFreqsIterator(termInfo)
	require.NoError(t, err)
	assert.Equal(t, DocumentId(0), it.Doc())
	assert.Equal(t, uint64(2), it.TermFreq())

	value, err := indexReader.Value("id", ToGlobalDocId(second.Id, 0))
	require.NoError(t, err)
	assert.Equal(t, utils.Uint64ToBytes(20), value)

	_, err = first.DictionaryReader("title")
	assert.True(t, IsFieldNotIndexed(err))
}

func TestIndexWriterDeleteDocuments(t *testing.T) {
	directory := t.TempDir()
	writer := NewIndexWriter(directory)

	require.NoError(t, writer.AddDocuments([]Document{
		testDocument(1, "a"),
		testDocument(2, "b"),
		testDocument(3, "c"),
	}))

	require.NoError(t, writer.DeleteDocuments("id", [][]byte{utils.Uint64ToBytes(2)}))
	require.NoError(t, writer.DeleteDocuments("id", [][]byte{utils.Uint64ToBytes(3), utils.Uint64ToBytes(99)}))

	indexReader, err := NewIndexReader(directory)
	require.NoError(t, err)
	defer indexReader.Close()

	segmentReader := indexReader.SegmentReaders[0]
	alive := segmentReader.AliveBitset()
	require.NotNil(t, alive)

	assert.True(t, alive.IsAlive(0))
	assert.False(t, alive.IsAlive(1))
	assert.False(t, alive.IsAlive(2))
	assert.False(t, alive.IsAlive(3))
	assert.Equal(t, uint32(2), alive.NumDeleted())
	assert.Equal(t, uint32(1), alive.NumAlive())
	assert.Equal(t, uint64(1), indexReader.NumDocs())

	docIds, err := indexReader.SearchByExactValues("id", [][]byte{utils.Uint64ToBytes(1), utils.Uint64ToBytes(2)})
	require.NoError(t, err)
	assert.Equal(t, []uint64{ToGlobalDocId(segmentReader.Id, 0)}, docIds)
}

func TestTokenizer(t *testing.T) {
	tokenizer := NewStandardTokenizer()
	tokenizer.Reset([]byte("  Hello, WORLD! Ça va?"))

	tokens := make([]string, 0)
	for {
		token, ok := tokenizer.NextToken()
		if !ok {
			break
		}
		tokens = append(tokens, string(token.Text))
	}

	assert.Equal(t, []string{"hello", "world", "ça", "va"}, tokens)
}

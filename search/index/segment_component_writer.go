package index

// SegmentComponentWriter builds one on-disk component of a segment from the
// stream of documents added to it.
//
// For every document, in ascending doc id order starting at 0, the index
// writer calls Doc once, then for each field Field, Term for every token (a
// byte field is a single token), and EndField. Write is called once after the
// last document.
type SegmentComponentWriter interface {
	Doc(docId DocumentId)
	Field(fieldName string, value []byte)
	Term(term []byte)
	EndField()
	Write(directory, segmentId string) error
}

package index

import (
	"math"
	"slices"
)

type termPostings struct {
	docIds    []uint32
	termFreqs []uint64
}

func (p *termPostings) add(docId DocumentId) {
	last := len(p.docIds) - 1
	if last >= 0 && p.docIds[last] == uint32(docId) {
		p.termFreqs[last]++
		return
	}

	p.docIds = append(p.docIds, uint32(docId))
	p.termFreqs = append(p.termFreqs, 1)
}

type fieldPostings struct {
	// lengths[docId] in tokens, zero when the document has no value
	lengths  []uint64
	postings map[string]*termPostings
}

// InvertedIndexWriter buffers the postings of a segment in memory and writes,
// per field, the dictionary, the block postings, the field lengths and the
// field stats.
type InvertedIndexWriter struct {
	docId   DocumentId
	maxDoc  uint32
	current *fieldPostings

	fields map[string]*fieldPostings
}

func newInvertedIndexWriter() *InvertedIndexWriter {
	return &InvertedIndexWriter{
		fields: make(map[string]*fieldPostings),
	}
}

func (w *InvertedIndexWriter) Doc(docId DocumentId) {
	w.docId = docId
	w.maxDoc = max(w.maxDoc, uint32(docId)+1)
}

func (w *InvertedIndexWriter) Field(fieldName string, value []byte) {
	field, exists := w.fields[fieldName]
	if !exists {
		field = &fieldPostings{postings: make(map[string]*termPostings)}
		w.fields[fieldName] = field
	}

	for uint32(len(field.lengths)) <= uint32(w.docId) {
		field.lengths = append(field.lengths, 0)
	}

	w.current = field
}

func (w *InvertedIndexWriter) EndField() {
	w.current = nil
}

func (w *InvertedIndexWriter) Term(term []byte) {
	postings, exists := w.current.postings[string(term)]
	if !exists {
		postings = &termPostings{}
		w.current.postings[string(term)] = postings
	}

	postings.add(w.docId)
	w.current.lengths[w.docId]++
}

func (w *InvertedIndexWriter) Write(directory, segmentId string) error {
	for fieldName, field := range w.fields {
		if err := w.writeField(directory, segmentId, fieldName, field); err != nil {
			return err
		}
	}

	return nil
}

func (w *InvertedIndexWriter) writeField(directory, segmentId, fieldName string, field *fieldPostings) error {
	lengths := make([]uint64, w.maxDoc)
	copy(lengths, field.lengths)

	stats := FieldStats{}
	for _, length := range lengths {
		if length > 0 {
			stats.DocCount++
			stats.SumTermFreq += length
		}
	}

	if err := writeFieldStats(directory, segmentId, fieldName, stats); err != nil {
		return err
	}

	if err := writeFieldLengths(directory, segmentId, fieldName, lengths); err != nil {
		return err
	}

	freqsWriter, err := newFieldFreqsWriter(directory, segmentId, fieldName)
	if err != nil {
		return err
	}

	dictWriter, err := newDictionaryWriter(directory, segmentId, fieldName)
	if err != nil {
		_ = freqsWriter.Close()
		return err
	}

	sortedTerms := make([]string, 0, len(field.postings))
	for term := range field.postings {
		sortedTerms = append(sortedTerms, term)
	}
	slices.Sort(sortedTerms)

	termInfo := &TermInfo{}
	for _, term := range sortedTerms {
		if err := writeTermPostings(freqsWriter, field.postings[term], lengths, termInfo); err != nil {
			_ = freqsWriter.Close()
			_ = dictWriter.Close()
			return err
		}

		if err := dictWriter.Write([]byte(term), termInfo); err != nil {
			_ = freqsWriter.Close()
			_ = dictWriter.Close()
			return err
		}
	}

	if err := freqsWriter.Close(); err != nil {
		_ = dictWriter.Close()
		return err
	}

	return dictWriter.Close()
}

func writeTermPostings(freqsWriter *FieldFreqsWriter, postings *termPostings, lengths []uint64, termInfo *TermInfo) error {
	termInfo.DocFreq = uint32(len(postings.docIds))

	for start := 0; start < len(postings.docIds); start += BlockSize {
		end := min(start+BlockSize, len(postings.docIds))
		docIds := postings.docIds[start:end]

		minFieldLength := uint64(math.MaxUint64)
		for _, docId := range docIds {
			minFieldLength = min(minFieldLength, lengths[docId])
		}

		blockStart, blockEnd, err := freqsWriter.WriteBlock(docIds, postings.termFreqs[start:end], fieldLengthToId(minFieldLength))
		if err != nil {
			return err
		}

		if start == 0 {
			termInfo.FreqsFileStartOffset = blockStart
		}
		termInfo.FreqsFileEndOffset = blockEnd
	}

	return nil
}

package index

const Bm25K1 = 1.2
const Bm25B = 0.75

// PrecomputeLengthNorms returns, for every length id, the BM25 length
// normalization k1 * (1 - b + b * length / averageFieldLength).
func PrecomputeLengthNorms(averageFieldLength float32) []float32 {
	norms := make([]float32, FieldLengthSize)

	for id, length := range FieldLengthTable {
		if averageFieldLength == 0 {
			norms[id] = Bm25K1
			continue
		}

		norms[id] = Bm25K1 * (1 - Bm25B + Bm25B*(float32(length)/averageFieldLength))
	}

	return norms
}

// Bm25TermFreqFactor is the saturated term frequency part of BM25 for a
// document with the given precomputed length norm.
func Bm25TermFreqFactor(termFreq float32, lengthNorm float32) float32 {
	return (termFreq * (Bm25K1 + 1)) / (termFreq + lengthNorm)
}

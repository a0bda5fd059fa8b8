package query

import "github.com/larose/lynxsearch/search/index"

// The traversals are generic over the cursor type. Called with a concrete
// scorer they get a loop specialized for it; called with the Scorer
// interface they go through dynamic dispatch.

// ForEachScorer calls callback with every (doc, score) of scorer, from its
// current document to the end.
func ForEachScorer[S Scorer](scorer S, callback func(docId index.DocumentId, score float32)) {
	for docId := scorer.Doc(); docId != index.Terminated; docId = scorer.Advance() {
		callback(docId, scorer.Score())
	}
}

// ForEachDocSet calls callback with every document of docSet. Score is
// never computed, even when docSet is a Scorer.
func ForEachDocSet[D DocSet](docSet D, callback func(docId index.DocumentId)) {
	for docId := docSet.Doc(); docId != index.Terminated; docId = docSet.Advance() {
		callback(docId)
	}
}

// ForEachPruningScorer calls callback only for documents whose score is
// strictly greater than threshold, and replaces threshold with the value
// callback returns. Every document is still visited; skipping blocks is left
// to specialized implementations.
//
// Callers are expected to return a non decreasing threshold. A lower one is
// accepted as is and lets more documents through.
func ForEachPruningScorer[S Scorer](scorer S, threshold float32, callback func(docId index.DocumentId, score float32) float32) {
	for docId := scorer.Doc(); docId != index.Terminated; docId = scorer.Advance() {
		score := scorer.Score()
		if score > threshold {
			threshold = callback(docId, score)
		}
	}
}

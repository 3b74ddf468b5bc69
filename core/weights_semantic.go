package core

import (
	"context"
	"math"
	"sort"
	"strings"
)

// SimPair is one answer's similarity to another, produced by SemanticWeights.
type SimPair struct {
	OtherID string
	Sim     float64
}

// SemScores maps each answer id to its similarities against every other
// answer (§4.2 W_sem). UsedFallback reports which source produced the
// scores: false when the embedding port served the vectors, true when the
// token-Jaccard fallback was used for all pairs.
type SemScores struct {
	Pairs map[string][]SimPair
	UsedFallback bool
}

// SemanticWeights computes cosine similarity over embeddings fetched in one
// batched Embed call. On port failure or timeout it falls back to token
// Jaccard over whitespace-split lowercased words; the fallback is reported
// via SemScores.UsedFallback but is never a hard error (§7
// Dependency-degraded).
func SemanticWeights(ctx context.Context, snap *Snapshot, embedder Embedder) SemScores {
	n := len(snap.Answers)
	if n == 0 {
		return SemScores{Pairs: map[string][]SimPair{}}
	}

	texts := make([]string, n)
	for i, a := range snap.Answers {
		texts[i] = a.Content + " " + a.Reasoning
	}

	vectors, err := tryEmbed(ctx, embedder, texts)
	if err != nil || vectors == nil {
		return SemScores{Pairs: fallbackJaccard(snap.Answers), UsedFallback: true}
	}

	pairs := make(map[string][]SimPair, n)
	for i, a := range snap.Answers {
		var row []SimPair
		for j, b := range snap.Answers {
			if i == j {
				continue
			}
			row = append(row, SimPair{OtherID: b.ID, Sim: cosine(vectors[i], vectors[j])})
		}
		pairs[a.ID] = row
	}
	return SemScores{Pairs: pairs}
}

// tryEmbed calls the embedder with the caller's context (the engine
// supplies the tEmbed timeout). A nil embedder yields nil vectors and no
// error, which SemanticWeights treats as "use the fallback".
func tryEmbed(ctx context.Context, embedder Embedder, texts []string) ([][]float64, error) {
	if embedder == nil {
		return nil, nil
	}
	return embedder.Embed(ctx, texts)
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return clampUnit(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func fallbackJaccard(answers []Answer) map[string][]SimPair {
	wordSets := make([]map[string]struct{}, len(answers))
	for i, a := range answers {
		wordSets[i] = tokenSet(a.Content)
	}
	out := make(map[string][]SimPair, len(answers))
	for i, a := range answers {
		var row []SimPair
		for j, b := range answers {
			if i == j {
				continue
			}
			row = append(row, SimPair{OtherID: b.ID, Sim: jaccard(wordSets[i], wordSets[j])})
		}
		out[a.ID] = row
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return clampUnit(float64(inter) / float64(union))
}

// AvgSim returns the mean similarity of answerID to all other answers, 0 if
// there is only one answer (§4.3 HYBRID avgSim).
func (s SemScores) AvgSim(answerID string) float64 {
	pairs := s.Pairs[answerID]
	if len(pairs) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pairs {
		sum += p.Sim
	}
	return sum / float64(len(pairs))
}

// SimTo returns the similarity from answerID to otherID, 0 if absent.
func (s SemScores) SimTo(answerID, otherID string) float64 {
	for _, p := range s.Pairs[answerID] {
		if p.OtherID == otherID {
			return p.Sim
		}
	}
	return 0
}

// sortedSimPairs returns a copy of pairs ordered by OtherID. VoteBFT does
// not use it (it looks peers up with SimTo), and nothing else calls it.
func sortedSimPairs(pairs []SimPair) []SimPair {
	out := make([]SimPair, len(pairs))
	copy(out, pairs)
	sort.Slice(out, func(i, j int) bool { return out[i].OtherID < out[j].OtherID })
	return out
}

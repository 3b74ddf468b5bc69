package core

// Weights bundles the four independently-computed weight vectors the
// voters consume (§4.2, §4.3). Built by the engine's barrier join; never
// constructed piecemeal by a voter.
type Weights struct {
	Reputation map[string]float64 // agentId -> W_rep
	Stake      map[string]float64 // answerId -> W_stk
	Debate     map[string]float64 // answerId -> W_deb
	Semantic   SemScores
}

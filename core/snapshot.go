package core

// Snapshot is the immutable in-memory projection of everything needed to
// score one question (§4.1, Design Note 9: "no runtime pointer cycles").
// Relationships are represented by id keys and lookup maps built once at
// load time; downstream computation is pure over a Snapshot value.
type Snapshot struct {
	Question Question
	Answers  []Answer
	Agents   map[string]Agent // agentId -> Agent
	Stakes   map[string][]Stake // answerId -> Stakes
	Rounds   []DebateRound      // ordered roundNumber descending, per contract
	Critiques map[string][]Critique // debateRoundId -> Critiques

	answerByID map[string]*Answer
}

// Build finalizes lookup maps after population. Must be called once before
// the snapshot is handed to the weight calculators.
func (s *Snapshot) Build() {
	s.answerByID = make(map[string]*Answer, len(s.Answers))
	for i := range s.Answers {
		s.answerByID[s.Answers[i].ID] = &s.Answers[i]
	}
}

// AnswerByID returns the answer with id, or nil if absent.
func (s *Snapshot) AnswerByID(id string) *Answer {
	return s.answerByID[id]
}

// AgentOf returns the agent who authored answer a.
func (s *Snapshot) AgentOf(a Answer) (Agent, bool) {
	ag, ok := s.Agents[a.AgentID]
	return ag, ok
}

// ActiveStakeSum returns the sum of ACTIVE-status stake amounts on answerID,
// per the fixed Open Question 3 ("ACTIVE as authoritative").
func (s *Snapshot) ActiveStakeSum(answerID string) float64 {
	var sum float64
	for _, st := range s.Stakes[answerID] {
		if st.Status == StakeActive {
			sum += st.Amount
		}
	}
	return sum
}

// CritiquesFor flattens every critique across all debate rounds that
// targets answerID, in createdAt ascending order.
func (s *Snapshot) CritiquesFor(answerID string) []Critique {
	var out []Critique
	for _, round := range s.Rounds {
		for _, c := range s.Critiques[round.ID] {
			if c.TargetAnswerID == answerID {
				out = append(out, c)
			}
		}
	}
	// stable sort by CreatedAt ascending; rounds may not be chronological
	// relative to each other once flattened, so sort explicitly.
	sortCritiquesByCreatedAt(out)
	return out
}

func sortCritiquesByCreatedAt(cs []Critique) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].CreatedAt.Before(cs[j-1].CreatedAt); j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

package gateway

import "swarmconsensus/core"

// handleEnvelope routes one bus envelope to immediate delivery (bypassing
// batching) or to the batcher, per §4.7: consensus:reached and failure
// notifications bypass batching; everything else is batched per
// (room, updateType) with latest-wins dedup.
func (g *Gateway) handleEnvelope(env core.Envelope) {
	switch env.Type {
	case core.MessageConsensusCalculated:
		p, _ := env.Payload.(core.ConsensusCalculatedPayload)
		if p.ConsensusReached {
			g.sendImmediate(env.QuestionID, "consensus:reached", p)
		} else {
			g.batch.Upsert(Update{Room: QuestionRoom(env.QuestionID), UpdateType: "consensus:calculated", Key: env.QuestionID, Payload: p})
		}
	case core.MessageConsensusFailed:
		p, _ := env.Payload.(core.ConsensusFailedPayload)
		g.sendImmediate(env.QuestionID, "consensus:failed", p)
	case core.MessageQuestionCreated:
		g.batch.Upsert(Update{Room: RoomGlobal, UpdateType: "question:new", Key: env.QuestionID, Payload: env.Payload})
	case core.MessageAnswerSubmitted:
		g.batch.Upsert(Update{Room: QuestionRoom(env.QuestionID), UpdateType: "answer:submitted", Key: env.QuestionID, Payload: env.Payload})
	case core.MessageLeaderboardUpdated:
		g.batch.Upsert(Update{Room: RoomLeaderboard, UpdateType: "leaderboard:updated", Key: "global", Payload: env.Payload})
	case core.MessageAgentReputationUpdated:
		m, _ := env.Payload.(map[string]any)
		agentID, _ := m["agentId"].(string)
		if agentID == "" {
			agentID = env.QuestionID // best-effort fallback when payload shape is unknown
		}
		g.batch.Upsert(Update{Room: AgentRoom(agentID), UpdateType: "reputation:updated", Key: agentID, Payload: env.Payload})
	}
}

// sendImmediate delivers a bypass-batching message to question:{id} and
// global (§4.7 "Bypasses batching for consensus:reached and failure
// notifications: immediate send to question:{id} and global").
func (g *Gateway) sendImmediate(questionID, msgType string, payload any) {
	msg := OutboundMessage{Type: msgType, Payload: payload}
	for _, c := range g.rooms.members(QuestionRoom(questionID)) {
		c.enqueue(msg)
		g.metrics.recordMessage()
	}
	for _, c := range g.rooms.members(RoomGlobal) {
		c.enqueue(msg)
		g.metrics.recordMessage()
	}
}

// flushBatch delivers one batch_update payload containing the
// deduplicated latest-wins update per entity key (§4.7).
func (g *Gateway) flushBatch(room, updateType string, items map[string]any) {
	msg := OutboundMessage{
		Type: "batch_update",
		Payload: map[string]any{
			"room":       room,
			"updateType": updateType,
			"items":      items,
		},
	}
	for _, c := range g.rooms.members(room) {
		c.enqueue(msg)
		g.metrics.recordMessage()
	}
}

// StatsSnapshot returns the current observability contract values.
func (g *Gateway) StatsSnapshot() Stats {
	g.connMu.RLock()
	active := len(g.conns)
	authed := 0
	for _, c := range g.conns {
		if _, ok := c.Authenticated(); ok {
			authed++
		}
	}
	g.connMu.RUnlock()

	return Stats{
		ActiveConnections:       active,
		AuthenticatedConnections: authed,
		RoomsOccupied:           g.rooms.roomCount(),
		MessagesPerSecond:       g.metrics.messagesPerSecond(),
	}
}

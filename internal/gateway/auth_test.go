package gateway

import "testing"

func TestCheckAgentBindRejectsInvalidCredential(t *testing.T) {
	g := &Gateway{}
	if err := g.checkAgentBind("agent1", Credential{Valid: false}); err == nil {
		t.Fatal("expected an error for an invalid credential")
	}
}

func TestCheckAgentBindRejectsSubjectMismatch(t *testing.T) {
	g := &Gateway{}
	if err := g.checkAgentBind("agent1", Credential{Subject: "agent2", Valid: true}); err == nil {
		t.Fatal("expected an error when subject does not match the target agent")
	}
}

func TestCheckAgentBindAcceptsMatchingSubject(t *testing.T) {
	g := &Gateway{}
	if err := g.checkAgentBind("agent1", Credential{Subject: "agent1", Valid: true}); err != nil {
		t.Errorf("unexpected error for a matching subject: %v", err)
	}
}

func TestInMemoryAuthenticatorIssueThenVerify(t *testing.T) {
	auth := NewInMemoryAuthenticator()
	token, err := auth.Issue("agent1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cred, err := auth.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cred.Valid || cred.Subject != "agent1" {
		t.Errorf("cred = %+v, want valid credential for agent1", cred)
	}
}

func TestHandleSubscribeAgentRejectsForeignAgent(t *testing.T) {
	g := &Gateway{rooms: newRoomIndex()}
	c := newConnection("c1", nil)
	c.setAgent("agent1")

	g.handleSubscribeAgent(c, clientMessage{AgentID: "agent2"})

	if _, joined := c.rooms[AgentRoom("agent2")]; joined {
		t.Error("expected subscribe:agent for a different agent to be rejected")
	}
	select {
	case msg := <-c.send:
		if msg.Type != "subscribe:agent:failed" {
			t.Errorf("expected subscribe:agent:failed, got %s", msg.Type)
		}
	default:
		t.Error("expected a failure message to be enqueued")
	}
}

func TestHandleSubscribeAgentAcceptsOwnAgent(t *testing.T) {
	g := &Gateway{rooms: newRoomIndex()}
	c := newConnection("c1", nil)
	c.setAgent("agent1")

	g.handleSubscribeAgent(c, clientMessage{AgentID: "agent1"})

	if _, joined := c.rooms[AgentRoom("agent1")]; !joined {
		t.Error("expected subscribe:agent for the connection's own agent to succeed")
	}
}

func TestInMemoryAuthenticatorRejectsUnknownToken(t *testing.T) {
	auth := NewInMemoryAuthenticator()
	cred, err := auth.Verify("bogus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.Valid {
		t.Error("expected an unknown token to yield an invalid credential")
	}
}

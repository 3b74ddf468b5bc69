package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// handshakeTTL bounds how long a minted token is accepted before the
// caller must re-handshake.
const handshakeTTL = 10 * time.Minute

// InMemoryAuthenticator is a minimal stand-in for the out-of-scope
// authentication layer (§1 Non-goals: token issuance/verification is
// out of scope). It exists only so the gateway's WS handshake has a
// concrete Authenticator to exercise: it mints opaque bearer tokens
// bound to an agent id and verifies them until they expire.
type InMemoryAuthenticator struct {
	mu     sync.Mutex
	tokens map[string]issuedToken
}

type issuedToken struct {
	subject string
	expires time.Time
}

// NewInMemoryAuthenticator constructs an empty token store.
func NewInMemoryAuthenticator() *InMemoryAuthenticator {
	return &InMemoryAuthenticator{tokens: make(map[string]issuedToken)}
}

// Issue mints a token bound to agentID, valid for handshakeTTL.
func (a *InMemoryAuthenticator) Issue(agentID string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	a.mu.Lock()
	a.tokens[token] = issuedToken{subject: agentID, expires: time.Now().Add(handshakeTTL)}
	a.mu.Unlock()

	return token, nil
}

// Verify implements Authenticator.
func (a *InMemoryAuthenticator) Verify(token string) (Credential, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.tokens[token]
	if !ok || time.Now().After(t.expires) {
		return Credential{}, nil
	}
	return Credential{Subject: t.subject, Valid: true}, nil
}

type handshakeController struct {
	auth *InMemoryAuthenticator
}

type handshakeResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresInSeconds"`
}

func (h *handshakeController) issue(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agentId"]
	token, err := h.auth.Issue(agentID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(handshakeResponse{Token: token, ExpiresIn: int(handshakeTTL.Seconds())})
}

// RegisterHandshake wires the pre-WS auth handshake route onto r: an
// agent calls POST /handshake/{agentId} to obtain the bearer token it
// then presents to the WS gateway's auth:agent message (§4.7).
func RegisterHandshake(r *mux.Router, auth *InMemoryAuthenticator) {
	r.Use(loggingMiddleware)
	hc := &handshakeController{auth: auth}
	r.HandleFunc("/handshake/{agentId}", hc.issue).Methods("POST")
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Debug("gateway: handshake request")
		next.ServeHTTP(w, r)
	})
}

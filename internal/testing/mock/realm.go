package mock

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"time"

	"mcpagent/internal/oauth"

	"github.com/google/uuid"
)

// RealmPath is the path prefix under which the realm endpoints are served.
const RealmPath = "/realms/test"

// RealmConfig configures the fake identity provider.
type RealmConfig struct {
	// RegistrationStatus forces the registration endpoint to fail with this
	// status. Zero (or 200/201) means registration succeeds with 201.
	RegistrationStatus int

	// TokenStatus forces the token endpoint to fail with this status.
	// Zero (or 200) means the exchange succeeds.
	TokenStatus int

	// AccessToken is the token value to issue. A random value is used when empty.
	AccessToken string

	// TokenLifetime is reported as expires_in. Zero omits expires_in.
	TokenLifetime time.Duration

	// Clock is used for token expiry (defaults to RealClock)
	Clock Clock
}

// issuedToken tracks a token handed out by the realm.
type issuedToken struct {
	clientID  string
	expiresAt time.Time
}

// Realm is a fake Keycloak realm serving dynamic client registration and
// the client credentials grant.
type Realm struct {
	config RealmConfig
	server *httptest.Server

	mu            sync.Mutex
	registrations int
	tokenRequests int
	clients       map[string]string
	tokens        map[string]issuedToken
}

// NewRealm starts a realm on a random local port. Call Close when done.
func NewRealm(config RealmConfig) *Realm {
	if config.Clock == nil {
		config.Clock = RealClock{}
	}

	r := &Realm{
		config:  config,
		clients: make(map[string]string),
		tokens:  make(map[string]issuedToken),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(RealmPath+oauth.RegistrationPath, r.handleRegistration)
	mux.HandleFunc(RealmPath+oauth.TokenPath, r.handleToken)
	r.server = httptest.NewServer(mux)

	return r
}

// URL returns the realm URL to configure clients with.
func (r *Realm) URL() string {
	return r.server.URL + RealmPath
}

// Close shuts the realm down.
func (r *Realm) Close() {
	r.server.Close()
}

// Registrations returns how many registration requests were received.
func (r *Realm) Registrations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registrations
}

// TokenRequests returns how many token requests were received.
func (r *Realm) TokenRequests() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokenRequests
}

// ValidateToken reports whether accessToken was issued by this realm and has not expired.
func (r *Realm) ValidateToken(accessToken string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	issued, ok := r.tokens[accessToken]
	if !ok {
		return false
	}
	return issued.expiresAt.IsZero() || r.config.Clock.Now().Before(issued.expiresAt)
}

func (r *Realm) handleRegistration(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations++

	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if status := r.config.RegistrationStatus; status != 0 && status != http.StatusOK && status != http.StatusCreated {
		writeJSON(w, status, map[string]string{"error": "invalid_client_metadata"})
		return
	}

	var metadata oauth.ClientRegistrationRequest
	if err := json.NewDecoder(req.Body).Decode(&metadata); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_client_metadata"})
		return
	}
	if !slices.Contains(metadata.GrantTypes, oauth.GrantTypeClientCredentials) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_client_metadata"})
		return
	}

	clientID := uuid.NewString()
	clientSecret := uuid.NewString()
	r.clients[clientID] = clientSecret

	writeJSON(w, http.StatusCreated, map[string]string{
		"client_id":     clientID,
		"client_secret": clientSecret,
		"client_name":   metadata.ClientName,
	})
}

func (r *Realm) handleToken(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokenRequests++

	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if status := r.config.TokenStatus; status != 0 && status != http.StatusOK {
		writeJSON(w, status, map[string]string{"error": "unauthorized_client"})
		return
	}

	if err := req.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	if req.PostForm.Get("grant_type") != oauth.GrantTypeClientCredentials {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	clientID := req.PostForm.Get("client_id")
	secret, ok := r.clients[clientID]
	if !ok || secret != req.PostForm.Get("client_secret") {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}

	accessToken := r.config.AccessToken
	if accessToken == "" {
		accessToken = uuid.NewString()
	}

	issued := issuedToken{clientID: clientID}
	response := map[string]interface{}{
		"access_token": accessToken,
		"token_type":   "Bearer",
	}
	if r.config.TokenLifetime > 0 {
		issued.expiresAt = r.config.Clock.Now().Add(r.config.TokenLifetime)
		response["expires_in"] = int64(r.config.TokenLifetime / time.Second)
	}
	r.tokens[accessToken] = issued

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

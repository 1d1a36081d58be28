// Package ledgertest runs an in-memory kudos ledger over HTTP for tests.
package ledgertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"

	"github.com/gorilla/mux"

	"github.com/Broodje2/kudos-bot/internal/domain"
)

// Request is one call the server received.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Transaction mirrors the POST /transaction body.
type Transaction struct {
	OriginSlackID        string `json:"origin_slack_id"`
	OriginKudosType      string `json:"origin_kudos_type"`
	DestinationSlackID   string `json:"destination_slack_id"`
	DestinationKudosType string `json:"destination_kudos_type"`
	Amount               int64  `json:"amount"`
	Reason               string `json:"reason"`
}

// InterceptFunc may answer a request instead of the fake. Returning
// handled=false lets the request through.
type InterceptFunc func(r Request) (status int, body string, handled bool)

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]string
	txs       []Transaction
	board     []domain.LeaderboardEntry
	requests  []Request
	intercept InterceptFunc
}

func New() *Server {
	s := &Server{users: map[string]string{}}

	r := mux.NewRouter()
	r.HandleFunc("/user/{id}", s.getUser).Methods(http.MethodGet)
	r.HandleFunc("/user", s.upsertUser).Methods(http.MethodPost)
	r.HandleFunc("/transaction", s.createTransaction).Methods(http.MethodPost)
	r.HandleFunc("/leaderboard", s.leaderboard).Methods(http.MethodGet)
	r.Use(s.record)

	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) Intercept(fn InterceptFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intercept = fn
}

// SetLeaderboard fixes the leaderboard response. Without it the board is
// derived from recorded transactions.
func (s *Server) SetLeaderboard(entries ...domain.LeaderboardEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = append([]domain.LeaderboardEntry(nil), entries...)
}

func (s *Server) PutUser(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = name
}

func (s *Server) Users() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.users))
	for k, v := range s.users {
		out[k] = v
	}
	return out
}

func (s *Server) Transactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Transaction(nil), s.txs...)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		req := Request{Method: r.Method, Path: r.URL.Path, Body: body}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		fn := s.intercept
		s.mu.Unlock()

		if fn != nil {
			if status, out, ok := fn(req); ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = io.WriteString(w, out)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	name, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": name})
}

func (s *Server) upsertUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SlackName string `json:"slack_name"`
		SlackID   string `json:"slack_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SlackID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "slack_id is required"})
		return
	}
	s.mu.Lock()
	s.users[body.SlackID] = body.SlackName
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"slack_id": body.SlackID, "slack_name": body.SlackName})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var tx Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed transaction"})
		return
	}
	if tx.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
		return
	}
	s.mu.Lock()
	s.txs = append(s.txs, tx)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) leaderboard(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type row struct {
		SlackID    string `json:"slack_id"`
		TotalKudos int64  `json:"total_kudos"`
	}
	var rows []row
	if s.board != nil {
		for _, e := range s.board {
			rows = append(rows, row{SlackID: e.SlackID, TotalKudos: e.TotalKudos})
		}
	} else {
		totals := map[string]int64{}
		for _, tx := range s.txs {
			totals[tx.DestinationSlackID] += tx.Amount
		}
		for id, n := range totals {
			rows = append(rows, row{SlackID: id, TotalKudos: n})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].TotalKudos != rows[j].TotalKudos {
				return rows[i].TotalKudos > rows[j].TotalKudos
			}
			return rows[i].SlackID < rows[j].SlackID
		})
	}
	if rows == nil {
		rows = []row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

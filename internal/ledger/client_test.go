package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Broodje2/kudos-bot/internal/domain"
	"github.com/Broodje2/kudos-bot/internal/ledger"
	"github.com/Broodje2/kudos-bot/internal/ledger/ledgertest"
)

func TestGetUser(t *testing.T) {
	srv := ledgertest.New()
	defer srv.Close()
	srv.PutUser("U1", "ada")

	c := ledger.New(srv.URL)
	u, err := c.GetUser(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, domain.User{SlackID: "U1", SlackName: "ada"}, u)
}

func TestGetUserNotFound(t *testing.T) {
	srv := ledgertest.New()
	defer srv.Close()

	_, err := ledger.New(srv.URL).GetUser(context.Background(), "U404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
	assert.True(t, ledger.IsStatus(err))
	assert.Equal(t, "user not found", ledger.Reason(err))
}

func TestUpsertUserIsIdempotentPerID(t *testing.T) {
	srv := ledgertest.New()
	defer srv.Close()
	c := ledger.New(srv.URL)
	ctx := context.Background()

	require.NoError(t, c.UpsertUser(ctx, domain.User{SlackID: "U1", SlackName: "ada"}))
	require.NoError(t, c.UpsertUser(ctx, domain.User{SlackID: "U1", SlackName: "ada.l"}))

	assert.Equal(t, map[string]string{"U1": "ada.l"}, srv.Users())

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	var body map[string]string
	require.NoError(t, json.Unmarshal(reqs[1].Body, &body))
	assert.Equal(t, map[string]string{"slack_name": "ada.l", "slack_id": "U1"}, body)
}

func TestCreateTransactionWireFormat(t *testing.T) {
	srv := ledgertest.New()
	defer srv.Close()

	err := ledger.New(srv.URL).CreateTransaction(context.Background(), domain.Transaction{
		OriginID:        "U1",
		OriginKind:      domain.KudosGiveaway,
		DestinationID:   "U2",
		DestinationKind: domain.KudosReceived,
		Amount:          5,
		Reason:          "helped deploy",
	})
	require.NoError(t, err)

	assert.Equal(t, []ledgertest.Transaction{{
		OriginSlackID:        "U1",
		OriginKudosType:      "giveaway",
		DestinationSlackID:   "U2",
		DestinationKudosType: "kudos",
		Amount:               5,
		Reason:               "helped deploy",
	}}, srv.Transactions())
}

func TestCreateTransactionRejected(t *testing.T) {
	srv := ledgertest.New()
	defer srv.Close()
	srv.Intercept(func(r ledgertest.Request) (int, string, bool) {
		return http.StatusUnprocessableEntity, `{"error":"not enough giveaway kudos"}`, r.Path == "/transaction"
	})

	err := ledger.New(srv.URL).CreateTransaction(context.Background(), domain.Transaction{Amount: 3})
	var se *ledger.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
	assert.Equal(t, "create_transaction", se.Op)
	assert.Equal(t, "not enough giveaway kudos", se.Message)
	assert.False(t, errors.Is(err, ledger.ErrNotFound))
}

func TestStatusErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	err := ledger.New(srv.URL).UpsertUser(context.Background(), domain.User{SlackID: "U1"})
	require.True(t, ledger.IsStatus(err))
	assert.Empty(t, ledger.Reason(err))
	assert.Equal(t, "ledger upsert_user: status 502", err.Error())
}

func TestStatusErrorNestedMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"reason is required","code":"E_REASON"}}`))
	}))
	defer srv.Close()

	err := ledger.New(srv.URL).CreateTransaction(context.Background(), domain.Transaction{Amount: 1})
	assert.Equal(t, "reason is required", ledger.Reason(err))
}

func TestTransportFailureIsNotStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := ledger.New(srv.URL, ledger.WithTimeout(20*time.Millisecond))
	_, err := c.Leaderboard(context.Background())
	require.Error(t, err)
	assert.False(t, ledger.IsStatus(err))
	assert.Empty(t, ledger.Reason(err))
}

func TestLeaderboardKeepsLedgerOrder(t *testing.T) {
	srv := ledgertest.New()
	defer srv.Close()
	srv.SetLeaderboard(
		domain.LeaderboardEntry{SlackID: "U2", TotalKudos: 5},
		domain.LeaderboardEntry{SlackID: "U1", TotalKudos: 10},
	)

	entries, err := ledger.New(srv.URL + "/").Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.LeaderboardEntry{
		{SlackID: "U2", TotalKudos: 5},
		{SlackID: "U1", TotalKudos: 10},
	}, entries)
}

func TestLeaderboardEmpty(t *testing.T) {
	srv := ledgertest.New()
	defer srv.Close()

	entries, err := ledger.New(srv.URL).Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

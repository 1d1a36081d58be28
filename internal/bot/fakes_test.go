package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/require"

	"github.com/Broodje2/kudos-bot/internal/domain"
	"github.com/Broodje2/kudos-bot/internal/logger"
)

// journal of every external call, shared by the fakes so tests can check ordering.
type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *recorder) log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// count returns the number of lines starting with prefix.
func (r *recorder) count(prefix string) int {
	n := 0
	for _, l := range r.log() {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) matching(prefix string) []string {
	var out []string
	for _, l := range r.log() {
		if strings.HasPrefix(l, prefix) {
			out = append(out, l)
		}
	}
	return out
}

type fakePlatform struct {
	rec *recorder

	mu          sync.Mutex
	botID       string
	authErr     error
	names       map[string]string
	lookupErr   map[string]error
	members     map[string][]string
	membersErr  error
	postErr     func(channel, text string) error
	views       []slack.ModalViewRequest
	viewErr     error
	postedBlock map[string][]slack.Block
}

func newFakePlatform(rec *recorder) *fakePlatform {
	return &fakePlatform{
		rec:         rec,
		botID:       "UBOT",
		names:       map[string]string{},
		lookupErr:   map[string]error{},
		members:     map[string][]string{},
		postedBlock: map[string][]slack.Block{},
	}
}

func (p *fakePlatform) PostMessage(_ context.Context, channelID, text string, blocks ...slack.Block) error {
	if len(blocks) > 0 {
		p.rec.add("post %s: %s (%d blocks)", channelID, text, len(blocks))
	} else {
		p.rec.add("post %s: %s", channelID, text)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.postedBlock[text] = blocks
	if p.postErr != nil {
		return p.postErr(channelID, text)
	}
	return nil
}

func (p *fakePlatform) PostEphemeral(_ context.Context, channelID, userID, text string) error {
	p.rec.add("ephemeral %s %s: %s", channelID, userID, text)
	return nil
}

func (p *fakePlatform) OpenView(_ context.Context, triggerID string, view slack.ModalViewRequest) error {
	p.rec.add("open_view %s %s", triggerID, view.CallbackID)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, view)
	return p.viewErr
}

func (p *fakePlatform) DisplayName(_ context.Context, userID string) (string, error) {
	p.rec.add("lookup %s", userID)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.lookupErr[userID]; err != nil {
		return "", err
	}
	if n, ok := p.names[userID]; ok {
		return n, nil
	}
	return strings.ToLower(userID), nil
}

func (p *fakePlatform) ChannelMembers(_ context.Context, channelID string) ([]string, error) {
	p.rec.add("members %s", channelID)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.membersErr != nil {
		return nil, p.membersErr
	}
	return append([]string(nil), p.members[channelID]...), nil
}

func (p *fakePlatform) BotUserID(context.Context) (string, error) {
	p.rec.add("auth")
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.authErr != nil {
		return "", p.authErr
	}
	return p.botID, nil
}

type fakeLedger struct {
	rec *recorder

	mu        sync.Mutex
	users     map[string]string
	getErr    error
	upsertErr map[string]error
	txErr     error
	txs       []domain.Transaction
	board     []domain.LeaderboardEntry
	boardErr  error
}

func newFakeLedger(rec *recorder) *fakeLedger {
	return &fakeLedger{rec: rec, users: map[string]string{}, upsertErr: map[string]error{}}
}

func (l *fakeLedger) GetUser(_ context.Context, id string) (domain.User, error) {
	l.rec.add("ledger get_user %s", id)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.getErr != nil {
		return domain.User{}, l.getErr
	}
	return domain.User{SlackID: id, SlackName: l.users[id]}, nil
}

func (l *fakeLedger) UpsertUser(_ context.Context, u domain.User) error {
	l.rec.add("ledger upsert %s %s", u.SlackID, u.SlackName)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.upsertErr[u.SlackID]; err != nil {
		return err
	}
	l.users[u.SlackID] = u.SlackName
	return nil
}

func (l *fakeLedger) CreateTransaction(_ context.Context, tx domain.Transaction) error {
	l.rec.add("ledger tx %s->%s %d", tx.OriginID, tx.DestinationID, tx.Amount)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.txErr != nil {
		return l.txErr
	}
	l.txs = append(l.txs, tx)
	return nil
}

func (l *fakeLedger) Leaderboard(context.Context) ([]domain.LeaderboardEntry, error) {
	l.rec.add("ledger leaderboard")
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.boardErr != nil {
		return nil, l.boardErr
	}
	return append([]domain.LeaderboardEntry(nil), l.board...), nil
}

type fakeJournal struct {
	mu    sync.Mutex
	syncs []domain.SyncRun
	kudos []domain.KudosAttempt
	err   error
}

func (j *fakeJournal) RecordSync(_ context.Context, run domain.SyncRun) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.syncs = append(j.syncs, run)
	return j.err
}

func (j *fakeJournal) RecordKudos(_ context.Context, a domain.KudosAttempt) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.kudos = append(j.kudos, a)
	return j.err
}

// harness wires a router and handler over the fakes.
type harness struct {
	rec      *recorder
	platform *fakePlatform
	ledger   *fakeLedger
	journal  *fakeJournal
	router   *Router
	handler  *Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	rec := &recorder{}
	h := &harness{
		rec:      rec,
		platform: newFakePlatform(rec),
		ledger:   newFakeLedger(rec),
		journal:  &fakeJournal{},
	}
	h.router = NewRouter(h.platform, logger.Nop(), WithHandlerTimeout(5*time.Second))
	h.handler = NewHandler(Options{
		Ledger:   h.ledger,
		Platform: h.platform,
		Journal:  h.journal,
		Logger:   logger.Nop(),
		Location: time.UTC,
	})
	h.handler.board.now = func() time.Time { return time.Date(2026, 10, 14, 15, 4, 0, 0, time.UTC) }
	h.handler.Register(h.router)
	return h
}

// dispatch sends in through the router with a recording ack and waits for
// the handler to finish.
func (h *harness) dispatch(t *testing.T, in Interaction) {
	t.Helper()
	err := h.router.Dispatch(context.Background(), in, func() error {
		h.rec.add("ack")
		return nil
	})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.router.Wait(ctx))
}

var errBoom = errors.New("boom")

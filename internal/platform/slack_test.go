package platform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	posts      []string
	ephemerals []string
	views      []string
	lookups    []string
	users      map[string]*slack.User
	pages      map[string][]string // cursor -> members
	next       map[string]string   // cursor -> next cursor
	cursors    []string
	err        error
	authUserID string
}

func (f *fakeAPI) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	f.posts = append(f.posts, channelID)
	return channelID, "1.0", f.err
}

func (f *fakeAPI) PostEphemeralContext(_ context.Context, channelID, userID string, _ ...slack.MsgOption) (string, error) {
	f.ephemerals = append(f.ephemerals, channelID+"/"+userID)
	return "1.0", f.err
}

func (f *fakeAPI) OpenViewContext(_ context.Context, triggerID string, _ slack.ModalViewRequest) (*slack.ViewResponse, error) {
	f.views = append(f.views, triggerID)
	return &slack.ViewResponse{}, f.err
}

func (f *fakeAPI) GetUserInfoContext(_ context.Context, user string) (*slack.User, error) {
	f.lookups = append(f.lookups, user)
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[user]
	if !ok {
		return nil, errors.New("user_not_found")
	}
	return u, nil
}

func (f *fakeAPI) GetUsersInConversationContext(_ context.Context, p *slack.GetUsersInConversationParameters) ([]string, string, error) {
	f.cursors = append(f.cursors, p.Cursor)
	if f.err != nil {
		return nil, "", f.err
	}
	return f.pages[p.Cursor], f.next[p.Cursor], nil
}

func (f *fakeAPI) AuthTestContext(context.Context) (*slack.AuthTestResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &slack.AuthTestResponse{UserID: f.authUserID}, nil
}

func TestDisplayNamePreference(t *testing.T) {
	api := &fakeAPI{users: map[string]*slack.User{
		"U1": {ID: "U1", Name: "ada", Profile: slack.UserProfile{DisplayName: "Ada", RealName: "Ada Lovelace"}},
		"U2": {ID: "U2", Name: "grace", Profile: slack.UserProfile{RealName: "Grace Hopper"}},
		"U3": {ID: "U3", Name: "linus"},
		"U4": {ID: "U4"},
	}}
	s := New(api, 1000, 10, nil)

	for id, want := range map[string]string{"U1": "Ada", "U2": "Grace Hopper", "U3": "linus", "U4": "U4"} {
		got, err := s.DisplayName(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDisplayNameRateLimited(t *testing.T) {
	api := &fakeAPI{users: map[string]*slack.User{"U1": {ID: "U1", Name: "ada"}}}
	s := New(api, 1, 1, nil)

	_, err := s.DisplayName(context.Background(), "U1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = s.DisplayName(ctx, "U1")
	require.Error(t, err, "second lookup must wait for a token")
	assert.Len(t, api.lookups, 1)
}

func TestChannelMembersPaginates(t *testing.T) {
	api := &fakeAPI{
		pages: map[string][]string{"": {"U1", "U2"}, "c2": {"U3"}, "c3": {}},
		next:  map[string]string{"": "c2", "c2": "c3"},
	}
	s := New(api, 100, 1, nil)

	members, err := s.ChannelMembers(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2", "U3"}, members)
	assert.Equal(t, []string{"", "c2", "c3"}, api.cursors)
}

func TestErrorsAreWrapped(t *testing.T) {
	boom := errors.New("not_in_channel")
	api := &fakeAPI{err: boom}
	s := New(api, 100, 1, nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.PostMessage(ctx, "C1", "hi"), boom)
	assert.ErrorIs(t, s.PostEphemeral(ctx, "C1", "U1", "hi"), boom)
	assert.ErrorIs(t, s.OpenView(ctx, "T1", slack.ModalViewRequest{}), boom)
	_, err := s.ChannelMembers(ctx, "C1")
	assert.ErrorIs(t, err, boom)
	_, err = s.BotUserID(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestBotUserID(t *testing.T) {
	s := New(&fakeAPI{authUserID: "UBOT"}, 1, 1, nil)
	id, err := s.BotUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "UBOT", id)
}

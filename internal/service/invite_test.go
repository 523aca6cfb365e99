package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableguild/tableguild/internal/model"
)

// TestInviteCreate issues an invite and checks the derived state.
func TestInviteCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	player := f.createMember(t, "player_bob", model.RoleMember)
	game := f.createGame(t, gm.ID, 4)

	view, err := f.inviteService.Create(ctx, gm.ID, model.RoleGamemaster, game.Game.ID, &CreateInviteRequest{
		InviteeID: player.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, InviteStatePending, view.State)
	assert.NotEmpty(t, view.Code)
	assert.True(t, view.ExpiresAt.After(time.Now().Add(71*time.Hour)))
}

// TestInviteCreate_NeedsInvitee rejects an invite with neither member nor
// email.
func TestInviteCreate_NeedsInvitee(t *testing.T) {
	f := newFixture(t)

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	game := f.createGame(t, gm.ID, 4)

	_, err := f.inviteService.Create(context.Background(), gm.ID, model.RoleGamemaster, game.Game.ID, &CreateInviteRequest{})
	assert.ErrorIs(t, err, ErrInviteeMissing)
}

// TestInviteCreate_NotOwner keeps non-owners from inviting.
func TestInviteCreate_NotOwner(t *testing.T) {
	f := newFixture(t)

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	otherGM := f.createMember(t, "gm_carol", model.RoleGamemaster)
	game := f.createGame(t, gm.ID, 4)

	_, err := f.inviteService.Create(context.Background(), otherGM.ID, model.RoleGamemaster, game.Game.ID, &CreateInviteRequest{
		InviteeEmail: "friend@club.test",
	})
	assert.ErrorIs(t, err, ErrNotGameOwner)
}

// TestInviteView_MarksViewed stamps viewed_at on first sight and keeps the
// original stamp afterwards.
func TestInviteView_MarksViewed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	player := f.createMember(t, "player_bob", model.RoleMember)
	game := f.createGame(t, gm.ID, 4)

	created, err := f.inviteService.Create(ctx, gm.ID, model.RoleGamemaster, game.Game.ID, &CreateInviteRequest{
		InviteeID: player.ID,
	})
	require.NoError(t, err)

	first, err := f.inviteService.View(ctx, created.Code)
	require.NoError(t, err)
	require.NotNil(t, first.ViewedAt)
	assert.Equal(t, InviteStateViewed, first.State)

	second, err := f.inviteService.View(ctx, created.Code)
	require.NoError(t, err)
	assert.Equal(t, first.ViewedAt.Unix(), second.ViewedAt.Unix())
}

// TestInviteAccept creates an approved registration for the invitee.
func TestInviteAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	player := f.createMember(t, "player_bob", model.RoleMember)
	game := f.createGame(t, gm.ID, 4)

	created, err := f.inviteService.Create(ctx, gm.ID, model.RoleGamemaster, game.Game.ID, &CreateInviteRequest{
		InviteeID: player.ID,
	})
	require.NoError(t, err)

	registration, err := f.inviteService.Accept(ctx, created.Code, player.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Game.ID, registration.GameID)
	assert.Equal(t, player.ID, registration.MemberID)
	assert.Equal(t, model.RegistrationApproved, registration.Status)
}

// TestInviteAccept_Idempotent returns the same registration on a repeat
// accept instead of creating another row.
func TestInviteAccept_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	player := f.createMember(t, "player_bob", model.RoleMember)
	game := f.createGame(t, gm.ID, 4)

	created, err := f.inviteService.Create(ctx, gm.ID, model.RoleGamemaster, game.Game.ID, &CreateInviteRequest{
		InviteeID: player.ID,
	})
	require.NoError(t, err)

	first, err := f.inviteService.Accept(ctx, created.Code, player.ID)
	require.NoError(t, err)

	second, err := f.inviteService.Accept(ctx, created.Code, player.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := f.registrationService.ListByGame(ctx, gm.ID, model.RoleGamemaster, game.Game.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// TestInviteAccept_WrongMember refuses a member-addressed invite redeemed
// by someone else.
func TestInviteAccept_WrongMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	player := f.createMember(t, "player_bob", model.RoleMember)
	stranger := f.createMember(t, "player_eve", model.RoleMember)
	game := f.createGame(t, gm.ID, 4)

	created, err := f.inviteService.Create(ctx, gm.ID, model.RoleGamemaster, game.Game.ID, &CreateInviteRequest{
		InviteeID: player.ID,
	})
	require.NoError(t, err)

	_, err = f.inviteService.Accept(ctx, created.Code, stranger.ID)
	assert.ErrorIs(t, err, ErrInviteWrongOwner)
}

// TestInviteAccept_Expired lapses the invite once the derived expiry
// passes.
func TestInviteAccept_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	player := f.createMember(t, "player_bob", model.RoleMember)
	game := f.createGame(t, gm.ID, 4)

	// Zero expiry hours makes every invite already lapsed.
	expiring := NewInviteService(f.inviteRepo, f.gameRepo, f.registrationRepo, f.gameService, f.auditService, 0)
	created, err := expiring.Create(ctx, gm.ID, model.RoleGamemaster, game.Game.ID, &CreateInviteRequest{
		InviteeID: player.ID,
	})
	require.NoError(t, err)

	_, err = expiring.Accept(ctx, created.Code, player.ID)
	assert.ErrorIs(t, err, ErrInviteExpired)
}

// TestDeriveState covers every classification branch with a fixed clock so
// member and admin read paths, which both call DeriveState, cannot
// disagree on expiry.
func TestDeriveState(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	viewed := now.Add(-time.Hour)

	cases := []struct {
		name   string
		invite model.Invite
		want   string
	}{
		{
			name:   "pending before expiry",
			invite: model.Invite{ExpiresAt: now.Add(time.Hour)},
			want:   InviteStatePending,
		},
		{
			name:   "viewed before expiry",
			invite: model.Invite{ExpiresAt: now.Add(time.Hour), ViewedAt: &viewed},
			want:   InviteStateViewed,
		},
		{
			name:   "expired unaccepted",
			invite: model.Invite{ExpiresAt: now.Add(-time.Minute)},
			want:   InviteStateExpired,
		},
		{
			name:   "expiry boundary counts as expired",
			invite: model.Invite{ExpiresAt: now},
			want:   InviteStateExpired,
		},
		{
			name:   "accepted survives expiry",
			invite: model.Invite{ExpiresAt: now.Add(-time.Hour), Accepted: true},
			want:   InviteStateAccepted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveState(&tc.invite, now))
		})
	}
}

// TestInviteListByGame returns derived states for the whole batch.
func TestInviteListByGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	player := f.createMember(t, "player_bob", model.RoleMember)
	game := f.createGame(t, gm.ID, 4)

	created, err := f.inviteService.Create(ctx, gm.ID, model.RoleGamemaster, game.Game.ID, &CreateInviteRequest{
		InviteeID: player.ID,
	})
	require.NoError(t, err)
	_, err = f.inviteService.Create(ctx, gm.ID, model.RoleGamemaster, game.Game.ID, &CreateInviteRequest{
		InviteeEmail: "friend@club.test",
	})
	require.NoError(t, err)

	_, err = f.inviteService.Accept(ctx, created.Code, player.ID)
	require.NoError(t, err)

	views, err := f.inviteService.ListByGame(ctx, gm.ID, model.RoleGamemaster, game.Game.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	states := map[string]string{}
	for _, view := range views {
		states[view.Code] = view.State
	}
	assert.Equal(t, InviteStateAccepted, states[created.Code])
}

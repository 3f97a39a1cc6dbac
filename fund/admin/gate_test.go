package admin

import (
	"context"
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type fakeRoleAPI struct {
	member *tele.ChatMember
	err    error
}

func (f *fakeRoleAPI) ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error) {
	return f.member, f.err
}

func TestIsAdminRoles(t *testing.T) {
	ctx := context.Background()
	chat := &tele.Chat{ID: 100}
	user := &tele.User{ID: 7}

	cases := []struct {
		role tele.MemberStatus
		want bool
	}{
		{tele.Creator, true},
		{tele.Administrator, true},
		{tele.Member, false},
		{tele.Restricted, false},
		{tele.Left, false},
		{tele.Kicked, false},
	}
	for _, tc := range cases {
		api := &fakeRoleAPI{member: &tele.ChatMember{Role: tc.role}}
		if got := IsAdmin(ctx, api, chat, user); got != tc.want {
			t.Errorf("role %s: got %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestIsAdminFailsClosed(t *testing.T) {
	ctx := context.Background()
	chat := &tele.Chat{ID: 100}
	user := &tele.User{ID: 7}

	api := &fakeRoleAPI{err: errors.New("api unavailable")}
	if IsAdmin(ctx, api, chat, user) {
		t.Fatal("lookup error must deny access")
	}

	if IsAdmin(ctx, &fakeRoleAPI{}, chat, user) {
		t.Fatal("nil member must deny access")
	}
	if IsAdmin(ctx, nil, chat, user) {
		t.Fatal("nil api must deny access")
	}
	if IsAdmin(ctx, &fakeRoleAPI{member: &tele.ChatMember{Role: tele.Creator}}, nil, user) {
		t.Fatal("nil chat must deny access")
	}
	if IsAdmin(ctx, &fakeRoleAPI{member: &tele.ChatMember{Role: tele.Creator}}, chat, nil) {
		t.Fatal("nil user must deny access")
	}
}

package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usernamesStub struct {
	taken map[string]bool
	err   error
}

func (u *usernamesStub) UsernameExists(ctx context.Context, username string) (bool, error) {
	if u.err != nil {
		return false, u.err
	}
	return u.taken[username], nil
}

func TestUsernameBase(t *testing.T) {
	cases := map[string]string{
		"Ayesha Khan":           "ayesha.khan",
		"  Muhammad  Ali Raza ": "muhammad.raza",
		"Zoë":                   "zo",
		"":                      "student",
		"O'Neil McDonald-Smith": "oneil.mcdonaldsmith",
	}
	for in, want := range cases {
		assert.Equal(t, want, usernameBase(in), in)
	}
}

func TestCredentialMinterRetriesCollisions(t *testing.T) {
	seq := []int64{1234, 1234, 42}
	users := &usernamesStub{taken: map[string]bool{"ayesha.khan1234": true}}
	m := newCredentialMinter(users, 10)
	m.randInt = func(max int64) (int64, error) {
		n := seq[0]
		seq = seq[1:]
		return n, nil
	}

	name, err := m.Username(context.Background(), "Ayesha Khan")
	require.NoError(t, err)
	assert.Equal(t, "ayesha.khan0042", name)
}

func TestCredentialMinterGivesUp(t *testing.T) {
	m := newCredentialMinter(&usernamesStub{err: errors.New("db down")}, 10)
	_, err := m.Username(context.Background(), "Ayesha Khan")
	require.Error(t, err)
}

func TestCredentialMinterPassword(t *testing.T) {
	m := newCredentialMinter(&usernamesStub{}, 4)
	pw, err := m.Password()
	require.NoError(t, err)
	assert.Len(t, pw, 10)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), pw)
}

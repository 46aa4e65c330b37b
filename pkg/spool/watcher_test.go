package spool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/identity"
)

type raised struct {
	kind      events.Kind
	payload   any
	principal *identity.Identity
	addr      string
}

type recordingRaiser struct {
	mu    sync.Mutex
	calls []raised
	err   error
}

func (r *recordingRaiser) Raise(ctx context.Context, kind events.Kind, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, _ := identity.Get(ctx)
	r.calls = append(r.calls, raised{kind: kind, payload: payload, principal: id, addr: identity.RemoteAddr(ctx)})
	return r.err
}

func (r *recordingRaiser) Calls() []raised {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]raised(nil), r.calls...)
}

const rolesEvent = `kind: member-roles-assigned
principal: 7
remote_addr: 10.0.0.4
payload:
  member_ids: [1, 2]
  roles: [editors]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEligible(t *testing.T) {
	tests := map[string]bool{
		"0001.yml":           true,
		"0001.yaml":          true,
		"0001.json":          true,
		"0001.YML":           true,
		"0001.yml.tmp":       false,
		"0001.yml.done":      false,
		"0001.yml.failed":    false,
		".0001.yml":          false,
		"README.md":          false,
		"/var/spool/x/a.yml": true,
	}
	for name, want := range tests {
		assert.Equal(t, want, Eligible(name), name)
	}
}

func TestProcessFile(t *testing.T) {
	t.Run("raises with principal and address", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "0001.yml", rolesEvent)
		raiser := &recordingRaiser{}

		err := NewWatcher(dir, raiser, nil).ProcessFile(context.Background(), path)
		require.NoError(t, err)

		calls := raiser.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, events.KindMemberRolesAssigned, calls[0].kind)
		assert.Equal(t, &events.RolesChanged{MemberIDs: []int{1, 2}, Roles: []string{"editors"}}, calls[0].payload)
		require.NotNil(t, calls[0].principal)
		assert.Equal(t, 7, calls[0].principal.UserID)
		assert.Equal(t, "10.0.0.4", calls[0].addr)

		assert.NoFileExists(t, path)
		assert.FileExists(t, path+DoneSuffix)
	})

	t.Run("no principal raises as system", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "0001.json", `{"kind":"user-deleted","payload":{"users":[{"id":3}]}}`)
		raiser := &recordingRaiser{}

		require.NoError(t, NewWatcher(dir, raiser, nil).ProcessFile(context.Background(), path))

		calls := raiser.Calls()
		require.Len(t, calls, 1)
		assert.Nil(t, calls[0].principal)
		assert.Equal(t, "", calls[0].addr)
	})

	t.Run("undecodable file is marked failed", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "0001.yml", "kind: content-published\n")
		raiser := &recordingRaiser{}

		err := NewWatcher(dir, raiser, nil).ProcessFile(context.Background(), path)
		assert.Error(t, err)
		assert.Empty(t, raiser.Calls())
		assert.FileExists(t, path+FailedSuffix)
	})

	t.Run("raise failure is marked failed", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "0001.yml", rolesEvent)
		raiser := &recordingRaiser{err: errors.New("sink down")}

		err := NewWatcher(dir, raiser, nil).ProcessFile(context.Background(), path)
		assert.EqualError(t, err, "sink down")
		assert.FileExists(t, path+FailedSuffix)
	})
}

func TestProcessExisting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0002.yml", `{"kind":"member-roles-removed","payload":{"member_ids":[2],"roles":["a"]}}`)
	writeFile(t, dir, "0001.yml", rolesEvent)
	writeFile(t, dir, "0003.yml.tmp", rolesEvent)
	writeFile(t, dir, "0000.yml.done", rolesEvent)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yml"), 0o700))
	raiser := &recordingRaiser{}

	require.NoError(t, NewWatcher(dir, raiser, nil).ProcessExisting(context.Background()))

	calls := raiser.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, events.KindMemberRolesAssigned, calls[0].kind)
	assert.Equal(t, events.KindMemberRolesRemoved, calls[1].kind)
	assert.FileExists(t, filepath.Join(dir, "0003.yml.tmp"))
}

func TestProcessExisting_MissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	w := NewWatcher(dir, &recordingRaiser{}, nil)
	assert.Equal(t, dir, w.Dir())
	assert.Error(t, w.ProcessExisting(context.Background()))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, "0001.yml", rolesEvent)
	raiser := &recordingRaiser{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewWatcher(dir, raiser, nil).Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(existing + DoneSuffix)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	// Written under a temporary name, then renamed into place
	tmp := writeFile(t, dir, "0002.yml"+TempSuffix, rolesEvent)
	final := filepath.Join(dir, "0002.yml")
	require.NoError(t, os.Rename(tmp, final))

	require.Eventually(t, func() bool {
		_, err := os.Stat(final + DoneSuffix)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Len(t, raiser.Calls(), 2)
}

package hostgroup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	"github.com/steelcutops/steelpkg/steelpkg/host"
)

type MockCommandManager struct {
	Hostname string
	Err      error
	CloseErr error
	Closed   bool
}

func (m *MockCommandManager) Close() error {
	m.Closed = true
	return m.CloseErr
}

func (m *MockCommandManager) RunLocal(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.Run(ctx, config)
}

func (m *MockCommandManager) RunRemote(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.Run(ctx, config)
}

func (m *MockCommandManager) Run(_ context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	if m.Err != nil {
		return cm.CommandResult{ExitCode: -1}, m.Err
	}
	return cm.CommandResult{STDOUT: m.Hostname}, nil
}

func newHost(t *testing.T, name string, err error) *host.Host {
	h, herr := host.NewHost(name, host.WithCommandManager(&MockCommandManager{Hostname: name, Err: err}))
	require.NoError(t, herr)
	return h
}

func TestHostGroupMembership(t *testing.T) {
	hg := NewHostGroup(newHost(t, "web2", nil), newHost(t, "web1", nil))
	assert.True(t, hg.HasHost("web1"))
	assert.Equal(t, []string{"web1", "web2"}, hg.Hostnames())

	hg.AddHost(newHost(t, "db1", nil))
	assert.Equal(t, []string{"db1", "web1", "web2"}, hg.Hostnames())
	assert.False(t, hg.HasHost("web3"))
}

func TestEachCollectsErrors(t *testing.T) {
	hg := NewHostGroup(newHost(t, "ok", nil), newHost(t, "bad1", nil), newHost(t, "bad2", nil))
	boom := errors.New("boom")

	err := hg.Each(context.Background(), 2, func(_ context.Context, h *host.Host) error {
		if h.Hostname == "ok" {
			return nil
		}
		return boom
	})
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "error while processing host bad1")
}

func TestEachNoErrors(t *testing.T) {
	hg := NewHostGroup(newHost(t, "a", nil))
	assert.NoError(t, hg.Each(context.Background(), 0, func(context.Context, *host.Host) error { return nil }))
}

func TestEachBoundsConcurrency(t *testing.T) {
	hg := NewHostGroup()
	for _, name := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		hg.AddHost(newHost(t, name, nil))
	}

	var inFlight, peak int32
	err := hg.Each(context.Background(), 2, func(context.Context, *host.Host) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestCloseClosesEveryHost(t *testing.T) {
	ok := &MockCommandManager{Hostname: "ok"}
	bad := &MockCommandManager{Hostname: "bad", CloseErr: errors.New("use of closed network connection")}
	hg := NewHostGroup()
	for _, runner := range []*MockCommandManager{ok, bad} {
		h, err := host.NewHost(runner.Hostname, host.WithCommandManager(runner))
		require.NoError(t, err)
		hg.AddHost(h)
	}

	err := hg.Close()
	assert.True(t, ok.Closed)
	assert.True(t, bad.Closed)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 1)
	assert.EqualError(t, merr.Errors[0], "closing host bad: use of closed network connection")
}

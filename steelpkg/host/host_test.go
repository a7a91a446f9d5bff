package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	fm "github.com/steelcutops/steelpkg/steelpkg/filemanager"
	pa "github.com/steelcutops/steelpkg/steelpkg/packageaction"
	pm "github.com/steelcutops/steelpkg/steelpkg/packagemanager"
)

// MockCommandManager reports the listed paths as present to `test -e` and
// fails every other command.
type MockCommandManager struct {
	Present map[string]bool
	Calls   []string
}

func (m *MockCommandManager) RunLocal(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.Run(ctx, config)
}

func (m *MockCommandManager) RunRemote(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.Run(ctx, config)
}

func (m *MockCommandManager) Run(_ context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	m.Calls = append(m.Calls, config.String())
	if config.Command == "test" && len(config.Args) == 2 && m.Present[config.Args[1]] {
		return cm.CommandResult{ExitCode: 0}, nil
	}
	return cm.CommandResult{ExitCode: 1}, nil
}

func TestNewHostRequiresHostname(t *testing.T) {
	_, err := NewHost("")
	assert.EqualError(t, err, "hostname is required")
}

func TestNewHostOptions(t *testing.T) {
	h, err := NewHost("db1.example.com",
		WithUser("deploy"),
		WithPassword("secret"),
		WithKeyPassphrase("phrase"),
		WithSudoPassword("sudo"),
		WithSSHClient(cm.RealSSHClient{}),
		WithYumHelper("/opt/yumHelper.py"),
	)
	require.NoError(t, err)

	assert.Equal(t, cm.Credentials{User: "deploy", Password: "secret", KeyPassphrase: "phrase", SudoPassword: "sudo"}, h.Credentials)
	assert.Equal(t, "/opt/yumHelper.py", h.YumHelper)

	runner, ok := h.CommandManager.(*cm.UnixCommandManager)
	require.True(t, ok)
	assert.Equal(t, "db1.example.com", runner.Hostname)
	assert.Equal(t, h.Credentials, runner.Credentials)
	assert.Equal(t, cm.RealSSHClient{}, runner.SSHClient)

	assert.IsType(t, &fm.UnixFileManager{}, h.Files)
	assert.Same(t, h.CommandManager, h.Packages.CommandManager)
}

func TestNewHostLocal(t *testing.T) {
	for _, name := range []string{"localhost", "127.0.0.1"} {
		h, err := NewHost(name)
		require.NoError(t, err)
		assert.Equal(t, fm.LocalFileManager{}, h.Files)
		assert.NotNil(t, h.Packages)
	}
}

func TestRemoteHostDetectsThroughRunner(t *testing.T) {
	runner := &MockCommandManager{Present: map[string]bool{pm.ZypperPath: true}}
	h, err := NewHost("suse1", WithCommandManager(runner))
	require.NoError(t, err)

	assert.Equal(t, pm.BackendZypper, h.Packages.PackageManager(context.Background()))
	assert.Equal(t, []string{
		"test -e /usr/bin/yum",
		"test -e /usr/bin/apt-get",
		"test -e /usr/bin/zypper",
	}, runner.Calls)
}

func TestPackageOperator(t *testing.T) {
	ctx := context.Background()
	spec := pa.Spec{Name: "rspec"}

	runner := &MockCommandManager{Present: map[string]bool{pm.YumPath: true}}
	h, err := NewHost("rhel1", WithCommandManager(runner), WithYumHelper("/opt/yumHelper.py"))
	require.NoError(t, err)
	op, err := h.Package(ctx, spec)
	require.NoError(t, err)
	assert.IsType(t, &pa.YumPackage{}, op)

	h, err = NewHost("rhel1", WithCommandManager(runner))
	require.NoError(t, err)
	op, err = h.Package(ctx, spec)
	require.NoError(t, err)
	assert.IsType(t, &pa.ProviderPackage{}, op)

	runner = &MockCommandManager{Present: map[string]bool{pm.AptGetPath: true}}
	h, err = NewHost("debian1", WithCommandManager(runner), WithYumHelper("/opt/yumHelper.py"))
	require.NoError(t, err)
	op, err = h.Package(ctx, spec)
	require.NoError(t, err)
	assert.IsType(t, &pa.ProviderPackage{}, op)

	h, err = NewHost("bare1", WithCommandManager(&MockCommandManager{}))
	require.NoError(t, err)
	_, err = h.Package(ctx, spec)
	assert.EqualError(t, err, "bare1: cannot find a compatible package system to manage package rspec")
	assert.ErrorIs(t, err, pm.ErrNoCompatibleBackend)
}

type closingCommandManager struct {
	MockCommandManager
	closed int
}

func (c *closingCommandManager) Close() error {
	c.closed++
	return nil
}

func TestCloseReleasesCommandManager(t *testing.T) {
	runner := &closingCommandManager{}
	h, err := NewHost("web1", WithCommandManager(runner))
	require.NoError(t, err)
	require.NoError(t, h.Close())
	assert.Equal(t, 1, runner.closed)

	h, err = NewHost("web2", WithCommandManager(&MockCommandManager{}))
	require.NoError(t, err)
	assert.NoError(t, h.Close())
}

package packagemanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rpmQA            = "/bin/rpm -qa"
	dpkgList         = "/usr/bin/dpkg --list"
	pkgQueryNames    = "/usr/sbin/pkg query '%n'"
	pkgQueryAll      = `/usr/sbin/pkg query --all "%n\t%v\t%R"`
	pkgRqueryAll     = `/usr/sbin/pkg rquery --all --no-repo-update "%n\t%v\t%R"`
	yumCheckUpdate   = "/usr/bin/yum -q check-update"
	zypperListUpdate = "/usr/bin/zypper -q list-updates"
	aptSimulate      = "/usr/bin/apt-get --simulate dist-upgrade"
)

func newHelpers(cmd *FakeCommandManager, f FakeFiles) *Helpers {
	return &Helpers{CommandManager: cmd, Files: f}
}

func TestDetectPriority(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		files    FakeFiles
		expected Backend
	}{
		{"yum wins over everything", files(YumPath, AptGetPath, ZypperPath, PkgPath), BackendRPM},
		{"apt-get without yum", files(AptGetPath, ZypperPath, PkgPath), BackendDPKG},
		{"zypper without yum or apt-get", files(ZypperPath, PkgPath), BackendZypper},
		{"pkg alone", files(PkgPath), BackendPkg},
		{"rpm alone is not a backend", files(RPMPath, DpkgPath), BackendNone},
		{"nothing", files(), BackendNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(ctx, tt.files))
		})
	}
}

func TestDetectIsReevaluated(t *testing.T) {
	f := files(PkgPath)
	h := newHelpers(newFakeCommandManager(), f)
	assert.Equal(t, BackendPkg, h.PackageManager(context.Background()))

	f[YumPath] = true
	assert.Equal(t, BackendRPM, h.PackageManager(context.Background()))
}

func TestBackendString(t *testing.T) {
	assert.Equal(t, "rpm", BackendRPM.String())
	assert.Equal(t, "dpkg", BackendDPKG.String())
	assert.Equal(t, "zypper", BackendZypper.String())
	assert.Equal(t, "pkg", BackendPkg.String())
	assert.Equal(t, "none", BackendNone.String())
	assert.Equal(t, "unknown", Backend(42).String())
}

func TestNoCompatibleBackend(t *testing.T) {
	ctx := context.Background()
	h := newHelpers(newFakeCommandManager(), files())

	_, err := h.Count(ctx)
	assert.EqualError(t, err, "cannot find a compatible package system to count packages")
	assert.ErrorIs(t, err, ErrNoCompatibleBackend)

	_, err = h.MD5(ctx)
	assert.EqualError(t, err, "cannot find a compatible package system to get a md5 of the package list")

	_, err = h.Refresh(ctx)
	assert.EqualError(t, err, "cannot find a compatible package system to update packages")

	_, err = h.CheckUpdates(ctx)
	assert.EqualError(t, err, "cannot find a compatible package system to check updates")
	assert.ErrorIs(t, err, ErrNoCompatibleBackend)
}

func TestZypperHasNoCount(t *testing.T) {
	cmd := newFakeCommandManager()
	h := newHelpers(cmd, files(ZypperPath))

	_, err := h.Count(context.Background())
	assert.ErrorIs(t, err, ErrNoCompatibleBackend)
	_, err = h.MD5(context.Background())
	assert.ErrorIs(t, err, ErrNoCompatibleBackend)
	assert.Empty(t, cmd.Calls)
}

func TestCountAndMD5PerBackend(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		files   FakeFiles
		command string
		stdout  string
		count   string
		md5     string
	}{
		{"rpm", files(YumPath, RPMPath), rpmQA, rpmOutput, "3", "f484823d241bd4315ac8741df15a91af"},
		{"dpkg", files(AptGetPath, DpkgPath), dpkgList, dpkgOutput, "3", "9608a4c69c0dd39b2ceb2cfafc36d67f"},
		{"pkg", files(PkgPath), pkgQueryNames, pkgNamesOutput, "3", "9d53c24076713389929e731579cf118a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newFakeCommandManager().On(tt.command, 0, tt.stdout)
			h := newHelpers(cmd, tt.files)

			count, err := h.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, &CommandOutput{ExitCode: 0, Output: tt.count}, count)

			sum, err := h.MD5(ctx)
			require.NoError(t, err)
			assert.Equal(t, &CommandOutput{ExitCode: 0, Output: tt.md5}, sum)

			again, err := h.MD5(ctx)
			require.NoError(t, err)
			assert.Equal(t, sum, again)

			assert.Equal(t, []string{tt.command, tt.command, tt.command}, cmd.Calls)
		})
	}
}

func TestCountBinaryNotFound(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		pm       func(h *Helpers) PackageManager
		expected string
	}{
		{"rpm", func(h *Helpers) PackageManager { return h.Yum() }, "cannot find rpm at /bin/rpm"},
		{"dpkg", func(h *Helpers) PackageManager { return h.Apt() }, "cannot find dpkg at /usr/bin/dpkg"},
		{"pkg", func(h *Helpers) PackageManager { return h.Pkg() }, "cannot find pkg at /usr/sbin/pkg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newFakeCommandManager()
			pm := tt.pm(newHelpers(cmd, files()))

			_, err := pm.Count(ctx)
			assert.EqualError(t, err, tt.expected)
			var notFound *BinaryNotFoundError
			assert.True(t, errors.As(err, &notFound))

			_, err = pm.MD5(ctx)
			assert.EqualError(t, err, tt.expected)

			assert.Empty(t, cmd.Calls)
		})
	}
}

func TestCountCommandFailed(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		files    FakeFiles
		command  string
		expected string
	}{
		{"rpm", files(YumPath, RPMPath), rpmQA, "rpm command failed, exit code was -1"},
		{"dpkg", files(AptGetPath, DpkgPath), dpkgList, "dpkg command failed, exit code was -1"},
		{"pkg", files(PkgPath), pkgQueryNames, "pkg command failed, exit code was -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newFakeCommandManager().On(tt.command, -1, "ii  would-be-counted 1.0 all x")
			h := newHelpers(cmd, tt.files)

			count, err := h.Count(ctx)
			assert.Nil(t, count)
			assert.EqualError(t, err, tt.expected)

			var failed *CommandFailedError
			require.True(t, errors.As(err, &failed))
			assert.Equal(t, -1, failed.ExitCode)

			_, err = h.MD5(ctx)
			assert.EqualError(t, err, tt.expected)
		})
	}
}

func TestRunnerErrorIsWrapped(t *testing.T) {
	cmd := newFakeCommandManager()
	boom := errors.New("ssh: handshake failed")
	cmd.Errors[rpmQA] = boom
	h := newHelpers(cmd, files(YumPath, RPMPath))

	_, err := h.Count(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), rpmQA)
}

func TestYumClean(t *testing.T) {
	ctx := context.Background()

	t.Run("missing yum", func(t *testing.T) {
		h := newHelpers(newFakeCommandManager(), files())
		_, err := h.YumClean(ctx, "all")
		assert.EqualError(t, err, "cannot find yum at /usr/bin/yum")
	})

	t.Run("unsupported mode", func(t *testing.T) {
		cmd := newFakeCommandManager()
		h := newHelpers(cmd, files(YumPath))
		_, err := h.YumClean(ctx, "rspec")
		assert.EqualError(t, err, "unsupported yum clean mode: rspec")
		var unsupported *UnsupportedModeError
		assert.True(t, errors.As(err, &unsupported))
		assert.Empty(t, cmd.Calls)
	})

	t.Run("command failed", func(t *testing.T) {
		cmd := newFakeCommandManager().On("/usr/bin/yum clean all", -1, "")
		h := newHelpers(cmd, files(YumPath))
		_, err := h.YumClean(ctx, "all")
		assert.EqualError(t, err, "yum clean failed, exit code was -1")
	})

	t.Run("every mode", func(t *testing.T) {
		cmd := newFakeCommandManager()
		for _, mode := range YumCleanModes {
			cmd.On("/usr/bin/yum clean "+mode, 0, "")
		}
		h := newHelpers(cmd, files(YumPath))

		for _, mode := range YumCleanModes {
			result, err := h.YumClean(ctx, mode)
			require.NoError(t, err)
			assert.Equal(t, &CommandOutput{ExitCode: 0, Output: ""}, result)
		}
		assert.Len(t, cmd.Calls, len(YumCleanModes))
	})
}

func TestRefreshApt(t *testing.T) {
	ctx := context.Background()

	t.Run("missing apt-get", func(t *testing.T) {
		_, err := newHelpers(newFakeCommandManager(), files()).Apt().Refresh(ctx)
		assert.EqualError(t, err, "cannot find apt-get at /usr/bin/apt-get")
	})

	t.Run("update failed", func(t *testing.T) {
		cmd := newFakeCommandManager().On("/usr/bin/apt-get update", -1, "")
		_, err := newHelpers(cmd, files(AptGetPath)).Refresh(ctx)
		assert.EqualError(t, err, "apt-get update failed, exit code was -1")
		assert.Equal(t, []string{"/usr/bin/apt-get update"}, cmd.Calls)
	})

	t.Run("update then checkupdates", func(t *testing.T) {
		cmd := newFakeCommandManager().
			On("/usr/bin/apt-get update", 0, "Hit:1 http://archive.ubuntu.com/ubuntu jammy InRelease").
			On(aptSimulate, 0, "")
		result, err := newHelpers(cmd, files(AptGetPath)).Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, &OperationResult{
			ExitCode:         0,
			Output:           "",
			OutdatedPackages: []OutdatedPackage{},
			PackageManager:   "apt",
		}, result)
		assert.Equal(t, []string{"/usr/bin/apt-get update", aptSimulate}, cmd.Calls)
	})
}

func TestRefreshPkgRunsOnlyPkgUpdate(t *testing.T) {
	ctx := context.Background()

	cmd := newFakeCommandManager().On("/usr/sbin/pkg update", 0, "")
	result, err := newHelpers(cmd, files(PkgPath)).Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "", result.Output)
	assert.Equal(t, []string{"/usr/sbin/pkg update"}, cmd.Calls)

	cmd = newFakeCommandManager().On("/usr/sbin/pkg update", -1, "")
	_, err = newHelpers(cmd, files(PkgPath)).Refresh(ctx)
	assert.EqualError(t, err, "pkg update failed, exit code was -1")

	_, err = newHelpers(newFakeCommandManager(), files()).Pkg().Refresh(ctx)
	assert.EqualError(t, err, "cannot find pkg at /usr/sbin/pkg")
}

func TestRefreshYum(t *testing.T) {
	ctx := context.Background()

	_, err := newHelpers(newFakeCommandManager(), files()).Yum().Refresh(ctx)
	assert.EqualError(t, err, "cannot find yum at /usr/bin/yum")

	cmd := newFakeCommandManager().
		On("/usr/bin/yum clean metadata", 0, "").
		On(yumCheckUpdate, 100, "bash.x86_64 4.2.46-35.el7 updates\n")
	result, err := newHelpers(cmd, files(YumPath)).Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, result.ExitCode)
	assert.Equal(t, "yum", result.PackageManager)
	assert.Equal(t, []OutdatedPackage{{Package: "bash.x86_64", Version: "4.2.46-35.el7", Repo: "updates"}}, result.OutdatedPackages)
	assert.Equal(t, []string{"/usr/bin/yum clean metadata", yumCheckUpdate}, cmd.Calls)

	cmd = newFakeCommandManager().On("/usr/bin/yum clean metadata", 1, "")
	_, err = newHelpers(cmd, files(YumPath)).Refresh(ctx)
	assert.EqualError(t, err, "yum clean failed, exit code was 1")
	assert.Equal(t, []string{"/usr/bin/yum clean metadata"}, cmd.Calls)
}

func TestRefreshZypper(t *testing.T) {
	ctx := context.Background()

	_, err := newHelpers(newFakeCommandManager(), files()).Zypper().Refresh(ctx)
	assert.EqualError(t, err, "cannot find zypper at /usr/bin/zypper")

	cmd := newFakeCommandManager().On("/usr/bin/zypper refresh", -1, "")
	_, err = newHelpers(cmd, files(ZypperPath)).Refresh(ctx)
	assert.EqualError(t, err, "zypper refresh failed, exit code was -1")

	cmd = newFakeCommandManager().On("/usr/bin/zypper refresh", 0, "All repositories have been refreshed.")
	result, err := newHelpers(cmd, files(ZypperPath)).Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, &OperationResult{ExitCode: 0, Output: "All repositories have been refreshed.", PackageManager: "zypper"}, result)
}

func TestIndexCommandsRunWithSudo(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		files   FakeFiles
		command string
		setup   func(cmd *FakeCommandManager)
	}{
		{"apt", files(AptGetPath), "/usr/bin/apt-get update", func(cmd *FakeCommandManager) { cmd.On(aptSimulate, 0, "") }},
		{"yum", files(YumPath), "/usr/bin/yum clean metadata", func(cmd *FakeCommandManager) { cmd.On(yumCheckUpdate, 0, "") }},
		{"zypper", files(ZypperPath), "/usr/bin/zypper refresh", func(*FakeCommandManager) {}},
		{"pkg", files(PkgPath), "/usr/sbin/pkg update", func(*FakeCommandManager) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newFakeCommandManager().On(tt.command, 0, "")
			tt.setup(cmd)
			_, err := newHelpers(cmd, tt.files).Refresh(ctx)
			require.NoError(t, err)
			assert.True(t, cmd.Sudo[tt.command], tt.command)
		})
	}

	cmd := newFakeCommandManager().On("/usr/bin/yum clean all", 0, "")
	_, err := newHelpers(cmd, files(YumPath)).YumClean(ctx, "all")
	require.NoError(t, err)
	assert.True(t, cmd.Sudo["/usr/bin/yum clean all"])
}

func TestCheckUpdatesDispatch(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		files   FakeFiles
		command string
		stdout  string
		manager string
	}{
		{"yum", files(YumPath, AptGetPath), yumCheckUpdate, "package1 1.1.1 rspecrepo\n" + indent + "package2 2.2.2 rspecrepo", "yum"},
		{"apt", files(AptGetPath, ZypperPath), aptSimulate, "Inst package1 [23.1+1-4ubunto7] (1.1.1 rspecrepo)\nInst package2 [23.1+1-4ubunto7] (2.2.2 rspecrepo)", "apt"},
		{"zypper", files(ZypperPath, PkgPath), zypperListUpdate, zypperOutput, "zypper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newFakeCommandManager().On(tt.command, 0, tt.stdout)
			result, err := newHelpers(cmd, tt.files).CheckUpdates(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, result.ExitCode)
			assert.Equal(t, tt.stdout, result.Output)
			assert.Equal(t, tt.manager, result.PackageManager)
			assert.Len(t, result.OutdatedPackages, 2)
			assert.Equal(t, []string{tt.command}, cmd.Calls)
		})
	}
}

func TestCheckUpdatesBinaryNotFound(t *testing.T) {
	ctx := context.Background()
	h := newHelpers(newFakeCommandManager(), files())

	_, err := h.Yum().CheckUpdates(ctx)
	assert.EqualError(t, err, "cannot find yum at /usr/bin/yum")
	_, err = h.Zypper().CheckUpdates(ctx)
	assert.EqualError(t, err, "cannot find zypper at /usr/bin/zypper")
	_, err = h.Apt().CheckUpdates(ctx)
	assert.EqualError(t, err, "cannot find apt-get at /usr/bin/apt-get")
	_, err = h.Pkg().CheckUpdates(ctx)
	assert.EqualError(t, err, "cannot find pkg at /usr/sbin/pkg")
}

func TestAptCheckUpdatesFailed(t *testing.T) {
	cmd := newFakeCommandManager().On(aptSimulate, -1, "")
	_, err := newHelpers(cmd, files(AptGetPath)).CheckUpdates(context.Background())
	assert.EqualError(t, err, "apt check-update failed, exit code was -1")
}

func TestPkgCheckUpdates(t *testing.T) {
	ctx := context.Background()

	t.Run("query failed", func(t *testing.T) {
		cmd := newFakeCommandManager().On(pkgQueryAll, -1, "")
		_, err := newHelpers(cmd, files(PkgPath)).CheckUpdates(ctx)
		assert.EqualError(t, err, "pkg query failed, exit code was -1")
		assert.Equal(t, []string{pkgQueryAll}, cmd.Calls)
	})

	t.Run("rquery failed", func(t *testing.T) {
		cmd := newFakeCommandManager().On(pkgQueryAll, 0, "").On(pkgRqueryAll, -1, "")
		_, err := newHelpers(cmd, files(PkgPath)).CheckUpdates(ctx)
		assert.EqualError(t, err, "pkg rquery failed, exit code was -1")
		assert.Equal(t, []string{pkgQueryAll, pkgRqueryAll}, cmd.Calls)
	})

	t.Run("outdated packages", func(t *testing.T) {
		cmd := newFakeCommandManager().On(pkgQueryAll, 0, pkgQueryOutput).On(pkgRqueryAll, 0, pkgRqueryOutput)
		result, err := newHelpers(cmd, files(PkgPath)).CheckUpdates(ctx)
		require.NoError(t, err)
		assert.Equal(t, &OperationResult{
			ExitCode: 0,
			Output: "package1-1.0.0                     <   needs updating (remote has 1.1.1)\n" +
				"package2-2.0.0                     <   needs updating (remote has 2.2.2)\n",
			OutdatedPackages: []OutdatedPackage{
				{Package: "package1", Version: "1.1.1", Repo: "rspecrepo"},
				{Package: "package2", Version: "2.2.2", Repo: "rspecrepo"},
			},
			PackageManager: "pkg",
		}, result)
	})
}

func TestForRejectsNone(t *testing.T) {
	h := newHelpers(newFakeCommandManager(), files())

	_, ok := h.For(BackendNone)
	assert.False(t, ok)
	_, ok = h.For(Backend(-1))
	assert.False(t, ok)

	for _, b := range []Backend{BackendRPM, BackendDPKG, BackendZypper, BackendPkg} {
		pm, ok := h.For(b)
		require.True(t, ok, b.String())
		assert.NotEmpty(t, pm.Name())
	}
}

package commandmanager

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/steelcutops/steelpkg/logger"
)

type SSHDialer interface {
	Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error)
}

// RealSSHClient dials with golang.org/x/crypto/ssh.
type RealSSHClient struct{}

func (RealSSHClient) Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	config.Timeout = timeout
	return ssh.Dial(network, addr, config)
}

type UnixCommandManager struct {
	Hostname  string
	SSHClient SSHDialer
	Logger    logger.Logger
	Credentials

	authOnce   sync.Once
	authMethod ssh.AuthMethod
	authErr    error
	keyManager SSHKeyManager
}

func (u *UnixCommandManager) log() logger.Logger {
	return logger.OrNop(u.Logger).With("hostname", u.Hostname)
}

var (
	errIncorrectSudoPassword = errors.New("sudo: incorrect password provided")
	errNotInSudoers          = errors.New("sudo: user is not in the sudoers file")
)

func (u *UnixCommandManager) RunLocal(ctx context.Context, config CommandConfig) (CommandResult, error) {
	start := time.Now()

	argv := localArgv(config)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if config.Sudo {
		cmd.Stdin = strings.NewReader(u.SudoPassword + "\n")
	} else if len(config.Env) > 0 {
		cmd.Env = append(os.Environ(), config.Env...)
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		Command:   config.String(),
		STDOUT:    stdout.String(),
		STDERR:    stderr.String(),
		ExitCode:  getExitCode(err),
		Duration:  time.Since(start),
		Timestamp: start,
	}

	if err := checkSudo(result); err != nil {
		return result, err
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return result, nil
	}
	return result, err
}

// localArgv builds the process argv for config. sudo resets the
// environment, so under sudo Env is passed through env(1).
func localArgv(config CommandConfig) []string {
	argv := append([]string{config.Command}, config.Args...)
	if !config.Sudo {
		return argv
	}
	prefix := []string{"sudo", "-S"}
	if len(config.Env) > 0 {
		prefix = append(append(prefix, "env"), config.Env...)
	}
	return append(prefix, argv...)
}

// getSSHConfig builds the client config. The auth method is resolved once
// per manager, so every command to the host shares one agent connection.
func (u *UnixCommandManager) getSSHConfig() (*ssh.ClientConfig, error) {
	u.authOnce.Do(func() {
		u.authMethod, u.authErr = u.newAuthMethod()
	})
	if u.authErr != nil {
		return nil, u.authErr
	}

	return &ssh.ClientConfig{
		User:            u.User,
		Auth:            []ssh.AuthMethod{u.authMethod},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}, nil
}

func (u *UnixCommandManager) newAuthMethod() (ssh.AuthMethod, error) {
	if u.Password != "" {
		u.log().Debug("Using password authentication")
		return ssh.Password(u.Password), nil
	}

	u.log().Debug("Using public key authentication")
	if u.KeyPassphrase != "" {
		u.keyManager = FileSSHKeyManager{}
	} else {
		u.keyManager = &AgentSSHKeyManager{}
	}

	keys, err := u.keyManager.ReadPrivateKeys(u.KeyPassphrase)
	if err != nil {
		return nil, err
	}
	return ssh.PublicKeys(keys...), nil
}

// Close releases the ssh-agent connection, if one was opened.
func (u *UnixCommandManager) Close() error {
	if c, ok := u.keyManager.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (u *UnixCommandManager) RunRemote(ctx context.Context, config CommandConfig) (CommandResult, error) {
	u.log().Debug("Executing remote command", "command", config.Command)

	if u.SSHClient == nil {
		return CommandResult{}, errors.New("SSHClient is not initialized")
	}

	sshConfig, err := u.getSSHConfig()
	if err != nil {
		return CommandResult{}, err
	}
	var dialTimeout time.Duration
	if deadline, ok := ctx.Deadline(); ok {
		dialTimeout = time.Until(deadline)
	} else {
		dialTimeout = 15 * time.Minute
	}

	client, err := u.SSHClient.Dial("tcp", u.Hostname+":22", sshConfig, dialTimeout)
	if err != nil {
		return CommandResult{}, err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return CommandResult{}, err
	}
	defer session.Close()

	cmdStr := config.String()
	if len(config.Env) > 0 {
		cmdStr = "env " + strings.Join(config.Env, " ") + " " + cmdStr
	}
	if config.Sudo {
		cmdStr = "sudo -S " + cmdStr
		session.Stdin = strings.NewReader(u.SudoPassword + "\n")
	}

	start := time.Now()

	outputCh := make(chan CommandResult, 1)
	errCh := make(chan error, 1)
	log := u.log()
	go func() {
		var stdout, stderr strings.Builder
		session.Stdout = &stdout
		session.Stderr = &stderr

		err := session.Run(cmdStr)
		var exitErr *ssh.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			log.Error("Failed to execute command over SSH", "command", cmdStr, "error", err, "stderr", stderr.String())
			errCh <- err
			return
		}

		outputCh <- CommandResult{
			STDOUT:   stdout.String(),
			STDERR:   stderr.String(),
			ExitCode: getExitCode(err),
		}
	}()

	select {
	case result := <-outputCh:
		result.Duration = time.Since(start)
		result.Timestamp = start
		result.Command = cmdStr

		if err := checkSudo(result); err != nil {
			return result, err
		}
		return result, nil

	case err := <-errCh:
		return CommandResult{Command: cmdStr, Timestamp: start}, err

	case <-ctx.Done():
		log.Error("Command over SSH timed out", "command", cmdStr)
		return CommandResult{}, ctx.Err()
	}
}

func (u *UnixCommandManager) Run(ctx context.Context, config CommandConfig) (CommandResult, error) {
	if u.IsLocal() {
		u.log().Debug("Detected local so running local command", "command", config.Command)
		return u.RunLocal(ctx, config)
	}

	u.log().Debug("Detected remote command so running remote command", "command", config.Command)
	return u.RunRemote(ctx, config)
}

// IsLocal reports whether commands run on this machine.
func (u *UnixCommandManager) IsLocal() bool {
	return u.Hostname == "" || u.Hostname == "localhost" || u.Hostname == "127.0.0.1"
}

func checkSudo(result CommandResult) error {
	output := result.STDOUT + result.STDERR
	if strings.Contains(output, "incorrect password") {
		return errIncorrectSudoPassword
	}
	if strings.Contains(output, "is not in the sudoers file") {
		return errNotInSudoers
	}
	return nil
}

func getExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
			return status.ExitStatus()
		}
		return exitError.ExitCode()
	}
	var sshExit *ssh.ExitError
	if errors.As(err, &sshExit) {
		return sshExit.ExitStatus()
	}
	return -1
}

// Package remote mirrors library PDFs to a web host over SSH.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/user"
	"path"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// DefaultConnectTimeout applies when Config.ConnectTimeout is zero.
const DefaultConnectTimeout = 10 * time.Second

// Config holds SSH connection parameters for the mirror host.
type Config struct {
	Host           string
	User           string // defaults to the current OS user
	ProxyJump      string
	ConnectTimeout time.Duration
}

// Client abstracts the remote operations used by Push, for testing.
type Client interface {
	// Exists reports whether a file exists on the host.
	Exists(ctx context.Context, remotePath string) (bool, error)
	// Upload copies a local file to the host, creating parent directories.
	Upload(ctx context.Context, localPath, remotePath string) error
	// Close releases any resources held by the client.
	Close() error
}

// SSHClient implements Client over a single SSH connection authenticated by
// the SSH agent.
type SSHClient struct {
	cfg       Config
	agentConn net.Conn
	signers   []ssh.Signer
	conn      *ssh.Client
	jump      *ssh.Client
}

// NewSSHClient connects to the SSH agent and then to cfg.Host.
func NewSSHClient(cfg Config) (*SSHClient, error) {
	if cfg.Host == "" {
		return nil, errors.New("no remote host configured")
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.User == "" {
		if u, err := user.Current(); err == nil {
			cfg.User = u.Username
		}
	}

	authSock := os.Getenv("SSH_AUTH_SOCK")
	if authSock == "" {
		return nil, fmt.Errorf("SSH agent not running. Start with `eval $(ssh-agent)` and add keys with `ssh-add`")
	}

	agentConn, err := net.Dial("unix", authSock)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to SSH agent at %s: %w", authSock, err)
	}

	signers, err := agent.NewClient(agentConn).Signers()
	if err != nil {
		agentConn.Close()
		return nil, fmt.Errorf("getting SSH agent signers: %w", err)
	}
	if len(signers) == 0 {
		agentConn.Close()
		return nil, fmt.Errorf("SSH agent has no keys. Add keys with `ssh-add`")
	}

	c := &SSHClient{cfg: cfg, agentConn: agentConn, signers: signers}
	if err := c.dial(); err != nil {
		agentConn.Close()
		return nil, err
	}
	return c, nil
}

func (c *SSHClient) dial() error {
	// Host keys are not verified; the mirror is a host the user already
	// pushes to with the same agent keys.
	clientConfig := &ssh.ClientConfig{
		User:            c.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.signers...)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.cfg.ConnectTimeout,
	}
	target := hostPort(c.cfg.Host)

	if c.cfg.ProxyJump == "" {
		conn, err := ssh.Dial("tcp", target, clientConfig)
		if err != nil {
			return wrapSSHError(err, c.cfg.Host, c.cfg.ProxyJump, c.cfg.User)
		}
		c.conn = conn
		return nil
	}

	jump, err := ssh.Dial("tcp", hostPort(c.cfg.ProxyJump), clientConfig)
	if err != nil {
		return fmt.Errorf("cannot reach proxy %s: %w", c.cfg.ProxyJump, err)
	}
	targetConn, err := jump.Dial("tcp", target)
	if err != nil {
		jump.Close()
		return fmt.Errorf("cannot reach %s through proxy %s: %w", c.cfg.Host, c.cfg.ProxyJump, err)
	}
	ncc, chans, reqs, err := ssh.NewClientConn(targetConn, target, clientConfig)
	if err != nil {
		targetConn.Close()
		jump.Close()
		return fmt.Errorf("SSH handshake with %s failed: %w", c.cfg.Host, err)
	}
	c.conn = ssh.NewClient(ncc, chans, reqs)
	c.jump = jump
	return nil
}

// Exists runs `test -e` on the host.
func (c *SSHClient) Exists(ctx context.Context, remotePath string) (bool, error) {
	err := c.run(ctx, "test -e "+shellQuote(remotePath), nil)
	if err == nil {
		return true, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitStatus() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", remotePath, err)
}

// Upload streams localPath into `cat` on the host.
func (c *SSHClient) Upload(ctx context.Context, localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	if err := c.run(ctx, uploadCommand(remotePath), f); err != nil {
		return fmt.Errorf("uploading %s: %w", localPath, err)
	}
	return nil
}

// run executes command in a new session, closing the session if ctx ends
// first.
func (c *SSHClient) run(ctx context.Context, command string, stdin io.Reader) error {
	session, err := c.conn.NewSession()
	if err != nil {
		return fmt.Errorf("creating SSH session on %s: %w", c.cfg.Host, err)
	}
	defer session.Close()
	session.Stdin = stdin

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		session.Close()
		return ctx.Err()
	}
}

// Close releases the connections and the agent socket.
func (c *SSHClient) Close() error {
	var errs []error
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	if c.jump != nil {
		errs = append(errs, c.jump.Close())
	}
	if c.agentConn != nil {
		errs = append(errs, c.agentConn.Close())
	}
	return errors.Join(errs...)
}

// uploadCommand creates the parent directory and writes stdin to remotePath.
func uploadCommand(remotePath string) string {
	return fmt.Sprintf("mkdir -p %s && cat > %s",
		shellQuote(path.Dir(remotePath)), shellQuote(remotePath))
}

// shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func hostPort(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, "22")
}

// wrapSSHError produces actionable error messages based on SSH error types.
func wrapSSHError(err error, host, proxyJump, username string) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "no supported methods remain"):
		return fmt.Errorf("SSH authentication failed for %s as user %q. Set remote_user or check that your key is authorized", host, username)
	case strings.Contains(errStr, "i/o timeout") || strings.Contains(errStr, "connection timed out"):
		if proxyJump != "" && strings.Contains(errStr, proxyJump) {
			return fmt.Errorf("cannot reach proxy %s: connection timed out", proxyJump)
		}
		return fmt.Errorf("connection to %s timed out", host)
	case strings.Contains(errStr, "connection refused"):
		return fmt.Errorf("connection refused by %s: is SSH running on the server?", host)
	default:
		return fmt.Errorf("SSH error connecting to %s: %w", host, err)
	}
}

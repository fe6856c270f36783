// Package remote runs commands and uploads files on a droplet over SSH.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"syscall"
	"time"

	"nathanbeddoewebdev/dropproxy/internal/domain"

	"github.com/pkg/sftp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

const (
	DefaultPort    = 22
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrUnreachable means the TCP connection or the SSH banner exchange
	// failed. A droplet that is still booting produces it; retrying helps.
	ErrUnreachable = domain.ErrUnreachable

	// ErrSession covers failures after the host answered: authentication,
	// host key rejection, channel or SFTP protocol errors.
	ErrSession = errors.New("ssh session error")
)

// Dialer opens SSH connections with public key authentication.
type Dialer struct {
	User   string
	Signer ssh.Signer

	// Port defaults to DefaultPort and Timeout to DefaultTimeout.
	Port    int
	Timeout time.Duration

	// HostKeyCallback defaults to accepting any host key. New droplets have
	// freshly generated host keys, so there is nothing to pin against.
	HostKeyCallback ssh.HostKeyCallback
}

// Client is a connected SSH client.
type Client struct {
	addr string
	conn *ssh.Client
}

// Connect dials host and completes the SSH handshake.
func (d *Dialer) Connect(ctx context.Context, host string) (*Client, error) {
	if d.Signer == nil {
		return nil, fmt.Errorf("%w: no private key configured", ErrSession)
	}

	port := d.Port
	if port == 0 {
		port = DefaultPort
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hostKeyCallback := d.HostKeyCallback
	if hostKeyCallback == nil {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	}

	config := &ssh.ClientConfig{
		User:            d.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(d.Signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("dial %s: %w: %v", addr, ErrUnreachable, err)
	}

	// NewClientConn has no context; bound the handshake with a deadline.
	if deadline, ok := dialCtx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			log.Debugf("connection close after handshake failure: %v", closeErr)
		}
		if isEarlyDisconnect(err) {
			return nil, fmt.Errorf("ssh handshake with %s: %w: %v", addr, ErrUnreachable, err)
		}
		return nil, fmt.Errorf("ssh handshake with %s: %w: %v", addr, ErrSession, err)
	}
	_ = conn.SetDeadline(time.Time{})

	log.WithFields(log.Fields{"addr": addr, "user": d.User}).Debug("ssh: connected")
	return &Client{addr: addr, conn: ssh.NewClient(clientConn, chans, reqs)}, nil
}

// isEarlyDisconnect reports handshake failures where the server dropped
// the connection before authentication, as sshd does while still starting.
func isEarlyDisconnect(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Upload copies the local file to remotePath over SFTP, replacing it.
func (c *Client) Upload(ctx context.Context, localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	client, err := sftp.NewClient(c.conn)
	if err != nil {
		return fmt.Errorf("%w: start sftp: %v", ErrSession, err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Debugf("sftp client close: %v", err)
		}
	}()

	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()

	dst, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrSession, remotePath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: write %s: %v", ErrSession, remotePath, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrSession, remotePath, err)
	}

	log.WithFields(log.Fields{"addr": c.addr, "path": remotePath}).Debug("sftp: uploaded")
	return nil
}

// Run executes command, streaming its output to stdout and stderr. A
// command that exits non-zero returns an error wrapping *ssh.ExitError;
// session failures wrap ErrSession.
func (c *Client) Run(ctx context.Context, command string, stdout, stderr io.Writer) error {
	session, err := c.conn.NewSession()
	if err != nil {
		return fmt.Errorf("%w: new session: %v", ErrSession, err)
	}
	defer session.Close()

	session.Stdout = stdout
	session.Stderr = stderr

	if err := session.Start(command); err != nil {
		return fmt.Errorf("%w: start command: %v", ErrSession, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		_ = session.Close()
		return ctx.Err()
	case err := <-done:
		return handleCommandError(err)
	}
}

func handleCommandError(err error) error {
	if err == nil {
		return nil
	}

	var e *ssh.ExitError
	if errors.As(err, &e) {
		return err
	}

	// The channel closed without an exit status, so the outcome is unknown.
	var em *ssh.ExitMissingError
	if errors.As(err, &em) {
		return fmt.Errorf("%w: %w", ErrSession, err)
	}

	return fmt.Errorf("%w: execute command: %v", ErrSession, err)
}

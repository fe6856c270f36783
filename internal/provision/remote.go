package provision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"nathanbeddoewebdev/dropproxy/internal/remote"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// Session is a connected remote shell.
type Session interface {
	Upload(ctx context.Context, localPath, remotePath string) error
	Run(ctx context.Context, command string, stdout, stderr io.Writer) error
	Close() error
}

// ConnectFunc opens a Session to host.
type ConnectFunc func(ctx context.Context, host string) (Session, error)

// DialSSH adapts a remote.Dialer to a ConnectFunc.
func DialSSH(d *remote.Dialer) ConnectFunc {
	return func(ctx context.Context, host string) (Session, error) {
		client, err := d.Connect(ctx, host)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Commands returns the shell commands that install nginx and enable the
// site uploaded as remoteDir/file.
func Commands(remoteDir, file string) []string {
	uploaded := path.Join(remoteDir, file)
	available := path.Join("/etc/nginx/sites-available", file)
	enabled := path.Join("/etc/nginx/sites-enabled", file)
	return []string{
		"sudo apt-get update -y",
		"sudo apt-get upgrade -y",
		"sudo apt install nginx -y",
		fmt.Sprintf("sudo cp %s %s", uploaded, available),
		fmt.Sprintf("ln -s %s %s", available, enabled),
		"systemctl restart nginx",
		fmt.Sprintf("sudo rm -rf %s", uploaded),
	}
}

// remoteSetup uploads the nginx file and runs Commands on host, retrying
// the whole step while the host is unreachable. Stderr output of the
// commands is returned; it does not fail the step.
func (w *Workflow) remoteSetup(ctx context.Context, host, localFile string) ([]string, error) {
	var stderrs []string
	attempt := 0

	op := func() error {
		attempt++
		stderrs = stderrs[:0]
		err := w.remoteOnce(ctx, host, localFile, &stderrs)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrRemoteUnreachable) {
			w.out.Errorf("SSH transport is not ready (attempt %d/%d)", attempt, w.cfg.RemoteAttempts)
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, d time.Duration) {
		log.WithError(err).WithField("host", host).Debugf("provision: retrying ssh in %s", d)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(w.remoteBackOff(), ctx), notify)
	if err != nil && errors.Is(err, ErrRemoteUnreachable) {
		err = fmt.Errorf("%s after %d attempts: %w", host, attempt, err)
	}
	return stderrs, err
}

func (w *Workflow) remoteBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.cfg.RemoteBackoff
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, uint64(w.cfg.RemoteAttempts-1))
}

func (w *Workflow) remoteOnce(ctx context.Context, host, localFile string, stderrs *[]string) error {
	sess, err := w.connect(ctx, host)
	if err != nil {
		return err
	}
	defer sess.Close()
	w.out.Successf("Connected to %s over SSH", host)

	file := filepath.Base(localFile)
	if err := sess.Upload(ctx, localFile, path.Join(w.cfg.RemoteDir, file)); err != nil {
		if !errors.Is(err, ErrRemoteSession) {
			err = fmt.Errorf("%w: %w", ErrRemoteSession, err)
		}
		return err
	}

	for _, command := range Commands(w.cfg.RemoteDir, file) {
		if err := w.out.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		w.out.Infof("> %s", command)

		var stderr bytes.Buffer
		err := sess.Run(ctx, command, w.out, &stderr)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			w.out.Errorf("%s", msg)
			*stderrs = append(*stderrs, msg)
		}
		if err == nil {
			continue
		}

		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			log.WithFields(log.Fields{"command": command, "status": exitErr.ExitStatus()}).Debug("provision: remote command failed")
			if stderr.Len() == 0 {
				msg := fmt.Sprintf("%q exited with status %d", command, exitErr.ExitStatus())
				w.out.Errorf("%s", msg)
				*stderrs = append(*stderrs, msg)
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, ErrRemoteSession) {
			err = fmt.Errorf("%w: %q: %w", ErrRemoteSession, command, err)
		}
		return err
	}

	if err := w.out.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return nil
}

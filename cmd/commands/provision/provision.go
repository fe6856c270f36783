package provision

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/console"
	"nathanbeddoewebdev/dropproxy/internal/credentials"
	"nathanbeddoewebdev/dropproxy/internal/fqdn"
	"nathanbeddoewebdev/dropproxy/internal/logging"
	"nathanbeddoewebdev/dropproxy/internal/provision"
	"nathanbeddoewebdev/dropproxy/internal/remote"
	"nathanbeddoewebdev/dropproxy/internal/runlog"
	"nathanbeddoewebdev/dropproxy/internal/sshkeys"

	"github.com/charmbracelet/huh/spinner"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Swapped by tests.
var (
	dial       = provision.DialSSH
	isTerminal = func() bool { return term.IsTerminal(int(os.Stderr.Fd())) }
)

// NewCommand returns the "provision" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision <argfile>",
		Short: "Create a droplet, push its nginx site and point DNS at it",
		Long: `Provision the droplet described by an argument file.

Any droplet with the same name is destroyed first. The new droplet gets
nginx with the configured site, and the domain's A record is created or
updated to the droplet's public IPv4 address.

The argument file holds one "name value" pair per line:

  droplet_name ubuntu_appexamplecom
  domain_name app.example.com
  nginx_conf_file app.example.com.conf

Examples:
  dropproxy provision arguments.txt
  dropproxy provision arguments.txt -o json`,
		Args: app.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, args[0])
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", app.FormatTable, "Summary format: table, json or yaml")

	return cmd
}

// Run provisions from the argument file at argsPath, printing progress to
// the command's stdout.
func Run(cmd *cobra.Command, argsPath string) error {
	format := app.FormatTable
	if f := cmd.Flags().Lookup("output"); f != nil {
		format = f.Value.String()
	}
	if err := app.CheckFormat(format); err != nil {
		return err
	}

	env, err := app.Load(app.OptionsFromFlags(cmd.Flags()), credentials.DefaultStore())
	if err != nil {
		return err
	}

	signer, err := sshkeys.LoadSigner(env.Workflow.SSHKeyPath)
	if err != nil {
		return fmt.Errorf("%w: ssh key: %w", provision.ErrRemoteSession, err)
	}
	env.Workflow.KeyFingerprint = sshkeys.Fingerprint(signer.PublicKey())

	dialer := &remote.Dialer{
		User:    env.Workflow.SSHUser,
		Signer:  signer,
		Timeout: env.Workflow.ConnectTimeout,
	}

	out := console.New(cmd.OutOrStdout())
	opts := []provision.Option{}

	runs, err := runlog.Open()
	if err != nil {
		log.WithError(err).Warn("provision: run history unavailable")
	} else {
		defer runs.Close()
		opts = append(opts, provision.WithRunStore(runs, env.Creds.CloudToken, env.Creds.DNSPublicKey, env.Creds.DNSSecretKey))
	}

	if isTerminal() {
		opts = append(opts, provision.WithWait(spinnerWait(cmd.ErrOrStderr())))
	}

	ctx := logging.WithRunID(cmd.Context(), uuid.NewString())
	w := provision.New(env.Cloud, env.DNS, dial(dialer), out, env.Workflow, opts...)

	res, err := w.Run(ctx, argsPath)
	if err != nil {
		return err
	}

	if ok, err := app.Encode(cmd.OutOrStdout(), format, res); ok {
		return err
	}
	printSummary(out, res)
	return out.Err()
}

// spinnerWait shows a spinner on w while fn runs.
func spinnerWait(w io.Writer) provision.WaitFunc {
	accessible := os.Getenv("ACCESSIBLE") != ""
	return func(ctx context.Context, title string, fn func(ctx context.Context) error) error {
		var waitErr error
		spinErr := spinner.New().
			Title(title + "...").
			Accessible(accessible).
			Output(w).
			Action(func() {
				waitErr = fn(ctx)
			}).
			Run()
		if spinErr != nil {
			return spinErr
		}
		return waitErr
	}
}

func printSummary(out *console.Printer, res *provision.Result) {
	out.Successf("Provisioned %s", fqdn.ParsedDomain{RegistrableDomain: res.Domain, RecordName: res.RecordName}.FQDN())
	out.Field("Droplet", fmt.Sprintf("%s (%s)", res.DropletName, res.DropletID))
	out.Field("Region", res.Region)
	out.Field("IPv4", res.IP)
	out.Field("A record", fmt.Sprintf("%s (%s)", res.RecordName, res.RecordAction))
	if len(res.Destroyed) > 0 {
		out.Field("Destroyed", strings.Join(res.Destroyed, ", "))
	}
	for _, e := range res.RemoteErrors {
		out.Field("Remote error", e)
	}
}

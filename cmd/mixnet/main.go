// Command mixnet is the command line front end of an election authority:
// it generates key shares, verifies the mixing chain and takes part in the
// threshold decryption, all through a shared bulletin board file.
package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"go.dedis.ch/mixnet/authority/impl"
	"go.dedis.ch/mixnet/config"
	"go.dedis.ch/mixnet/general"
	"go.dedis.ch/mixnet/metrics"
	"go.dedis.ch/mixnet/random"
	"go.dedis.ch/mixnet/types"
)

// node gathers what the commands of one run share.
type node struct {
	conf      *config.Config
	params    *types.PublicParameters
	authority *impl.DecryptionAuthority
	registry  *prometheus.Registry
}

func main() {
	err := newApp(&node{}).Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("mixnet failed")
	}
}

func newApp(n *node) *cli.App {
	return &cli.App{
		Name:  "mixnet",
		Usage: "key establishment, mix-net verification and threshold decryption",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "mixnet.yml",
				EnvVars: []string{"MIXNET_CONFIG"},
				Usage:   "path to the configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "overrides the configured log level",
			},
		},
		Before:   n.setup,
		After:    n.teardown,
		Commands: n.commands(),
	}
}

// setup loads the configuration, configures logging and builds the
// authority.
func (n *node) setup(c *cli.Context) error {
	conf, err := config.InitConfig(c.String("config"))
	if err != nil {
		return xerrors.Errorf("failed to load config: %v", err)
	}

	level := conf.Log.ZerologLevel()
	if c.String("log-level") != "" {
		level, err = zerolog.ParseLevel(c.String("log-level"))
		if err != nil {
			return xerrors.Errorf("invalid log level: %v", err)
		}
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("run", xid.New().String()).
		Logger()

	params, err := conf.PublicParameters()
	if err != nil {
		return err
	}

	n.registry = prometheus.NewRegistry()
	m, err := metrics.NewVerificationMetrics(n.registry)
	if err != nil {
		return xerrors.Errorf("failed to register metrics: %v", err)
	}

	n.conf = conf
	n.params = params
	n.authority = impl.NewDecryptionAuthority(params, general.New(params.Group), random.New(),
		impl.WithWorkers(conf.Workers), impl.WithMetrics(m))

	return nil
}

// teardown writes the metrics of the run when a text file is configured.
func (n *node) teardown(c *cli.Context) error {
	if n.conf == nil || n.conf.Metrics == nil || n.conf.Metrics.TextFile == "" {
		return nil
	}

	err := prometheus.WriteToTextfile(n.conf.Metrics.TextFile, n.registry)
	if err != nil {
		return xerrors.Errorf("failed to write metrics: %v", err)
	}

	return nil
}

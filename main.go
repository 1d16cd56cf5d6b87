package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/go-i2p/go-obfs2/lib/client"
	"github.com/go-i2p/go-obfs2/lib/config"
	"github.com/go-i2p/go-obfs2/lib/handshake"
	"github.com/go-i2p/go-obfs2/lib/mtproto"
	"github.com/go-i2p/go-obfs2/lib/server"
	"github.com/go-i2p/go-obfs2/lib/util/signals"
	"github.com/go-i2p/go-obfs2/lib/util/time/monotonic"
	"github.com/go-i2p/go-obfs2/lib/util/time/sntp"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logger.GetGoI2PLogger()

const ntpTimeout = 10 * time.Second

var (
	logLevel string

	probeAddr    string
	probeTimeout time.Duration
	probeDC      int16
)

var rootCmd = &cobra.Command{
	Use:           "go-obfs2",
	Short:         "Obfuscated MTProto bootstrap server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return oops.Wrapf(err, "invalid --log-level")
		}
		logrus.SetLevel(level)
		return config.InitConfig()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept connections and answer req_pq",
	RunE:  runServe,
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run one handshake against a server and print the resPQ",
	RunE:  runProbe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := config.CurrentConfig().Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&config.CfgFile, "config", "", "config file (default $HOME/.go-obfs2/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "level for the server connection log")

	serveCmd.Flags().String("listen", config.Defaults().Server.ListenAddress, "address to listen on")
	viper.BindPFlag("server.listen_address", serveCmd.Flags().Lookup("listen"))

	probeCmd.Flags().StringVar(&probeAddr, "addr", config.Defaults().Server.ListenAddress, "server address")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 10*time.Second, "timeout for the whole exchange")
	probeCmd.Flags().Int16Var(&probeDC, "dc", 2, "datacenter id announced in the header")

	rootCmd.AddCommand(serveCmd, probeCmd, configCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.CurrentConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	params, err := config.NewParams(cfg.Protocol)
	if err != nil {
		return err
	}

	clock := monotonic.NewClock()
	if cfg.Clock.NTPServer != "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), ntpTimeout)
		err := sntp.Sync(ctx, sntp.DefaultNTPClient{}, clock, cfg.Clock.NTPServer)
		cancel()
		if err != nil {
			log.WithError(err).Warn("clock sync failed, using the system clock")
		}
	}

	h := handshake.NewHandshaker(params, mtproto.NewMessageIDGenerator(clock), handshake.Options{
		MaxFrameSize:  cfg.Server.MaxFrameSize,
		StrictTag:     cfg.Handshake.StrictTag,
		StrictRequest: cfg.Handshake.StrictRequest,
	})
	srv, err := server.New(cfg.Server, h)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	reload := signals.RegisterReloadHandler(func() {
		log.Info("configuration is read at startup; restart to apply changes")
	})
	defer signals.DeregisterReloadHandler(reload)
	interrupt := signals.RegisterInterruptHandler(func() {
		log.Debug("shutting down")
		cancel()
	})
	defer signals.DeregisterInterruptHandler(interrupt)
	go signals.Handle(ctx)

	if err := srv.Start(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-srv.Done():
	}

	if err := srv.Close(); err != nil {
		return err
	}
	if err := srv.Err(); err != nil {
		return err
	}
	stats := srv.Stats()
	log.WithFields(logger.Fields{
		"accepted":  stats.Accepted,
		"completed": stats.Completed,
		"failed":    stats.Failed,
	}).Info("server stopped")
	return nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	result, err := client.Probe(cmd.Context(), probeAddr, client.Options{
		Timeout: probeTimeout,
		DC:      probeDC,
	})
	if err != nil {
		return err
	}
	res := result.Response
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "message_id:    %d\n", res.MessageID)
	fmt.Fprintf(w, "nonce:         %s\n", hex.EncodeToString(res.Nonce[:]))
	fmt.Fprintf(w, "server_nonce:  %s\n", hex.EncodeToString(res.ServerNonce[:]))
	fmt.Fprintf(w, "pq:            %s\n", hex.EncodeToString(res.PQ))
	fmt.Fprintf(w, "fingerprints:  %v\n", res.ServerPublicKeyFingerprints)
	fmt.Fprintf(w, "rtt:           %s\n", result.RTT)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

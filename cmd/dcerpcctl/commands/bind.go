package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mellowdrifter/dcerpc/pdu"
	"github.com/mellowdrifter/dcerpc/rpc"
)

var errAbstractSyntaxRequired = errors.New("--abstract or target.abstract_syntax must be set")

func bindCmd() *cobra.Command {
	var (
		contextID   uint16
		abstract    string
		transfer    string
		dialTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "bind",
		Short: "Perform a Bind and print the negotiated result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("abstract") || cfg.Target.AbstractSyntax == "" {
				cfg.Target.AbstractSyntax = abstract
			}
			if cmd.Flags().Changed("transfer") || cfg.Target.TransferSyntax == "" {
				cfg.Target.TransferSyntax = transfer
			}
			if cfg.Target.AbstractSyntax == "" {
				return errAbstractSyntaxRequired
			}
			if !cmd.Flags().Changed("dial-timeout") && cfg.Transport.DialTimeout > 0 {
				dialTimeout = cfg.Transport.DialTimeout
			}

			abstractSyntax, err := parsePresentationSyntax(cfg.Target.AbstractSyntax)
			if err != nil {
				return fmt.Errorf("parse abstract syntax: %w", err)
			}
			transferSyntax, err := parsePresentationSyntax(cfg.Target.TransferSyntax)
			if err != nil {
				return fmt.Errorf("parse transfer syntax: %w", err)
			}

			contextList := pdu.ContextList{{
				ContextID:      contextID,
				AbstractSyntax: abstractSyntax,
				TransferSyntax: []pdu.PresentationSyntax{transferSyntax},
			}}

			logger := newLogger(cfg)
			defer func() { _ = logger.Sync() }()

			collector, stopMetrics := newMetricsCollector(logger)
			defer stopMetrics()

			ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
			defer cancel()

			transport, err := rpc.DialTCP(ctx, cfg.Target.Addr)
			if err != nil {
				return fmt.Errorf("dial %s: %w", cfg.Target.Addr, err)
			}
			defer transport.Close()

			conn := rpc.NewConnection(transport, rpc.WithLogger(logger), rpc.WithMetrics(collector))
			if err := conn.Acquire(ctx); err != nil {
				return fmt.Errorf("acquire connection: %w", err)
			}
			defer conn.Release()

			ack, err := conn.Bind(ctx, contextList)
			if err != nil {
				return fmt.Errorf("bind: %w", err)
			}

			for i, result := range ack.ResultList {
				fmt.Printf("context %d: result=%d reason=%d", i, result.Result, result.Reason)
				if result.TransferSyntax != nil {
					fmt.Printf(" transfer=%s.%d", result.TransferSyntax.UUID, result.TransferSyntax.Version)
				}
				fmt.Println()
			}
			fmt.Printf("secondary address: %q\n", ack.SecAddr.Address)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.Uint16Var(&contextID, "context", 0, "presentation context id to propose")
	flags.StringVar(&abstract, "abstract", "", "abstract syntax, <uuid>.<version> (overrides target.abstract_syntax)")
	flags.StringVar(&transfer, "transfer", "8a885d04-1ceb-11c9-9fe8-08002b104860.2", "transfer syntax, <uuid>.<version>")
	flags.DurationVar(&dialTimeout, "dial-timeout", 5*time.Second, "dial and bind timeout")

	return cmd
}

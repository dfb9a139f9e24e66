package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mellowdrifter/dcerpc/pdu"
	"github.com/mellowdrifter/dcerpc/rpc"
)

func callCmd() *cobra.Command {
	var (
		contextID   uint16
		opnum       uint16
		stubHex     string
		dialTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Send a raw Request and print the Response stub data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("dial-timeout") && cfg.Transport.DialTimeout > 0 {
				dialTimeout = cfg.Transport.DialTimeout
			}

			stub, err := hex.DecodeString(stubHex)
			if err != nil {
				return fmt.Errorf("parse --stub-hex: %w", err)
			}

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

			req := pdu.NewRequest(contextID, opnum, stub)
			res, err := conn.SendMessage(ctx, req, true)
			if err != nil {
				return fmt.Errorf("call opnum %d: %w", opnum, err)
			}

			response, ok := res.(*pdu.Response)
			if !ok {
				return fmt.Errorf("unexpected response PDU type %v", res.Type())
			}

			fmt.Printf("call id: %d\n", response.CallID())
			fmt.Printf("stub data (%d bytes): %s\n", len(response.StubData), hex.EncodeToString(response.StubData))

			return nil
		},
	}

	flags := cmd.Flags()
	flags.Uint16Var(&contextID, "context", 0, "presentation context id negotiated during bind")
	flags.Uint16Var(&opnum, "opnum", 0, "operation number to invoke")
	flags.StringVar(&stubHex, "stub-hex", "", "hex-encoded stub data to send")
	flags.DurationVar(&dialTimeout, "dial-timeout", 5*time.Second, "dial and call timeout")

	return cmd
}

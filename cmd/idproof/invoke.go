package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"idproof/internal/platform/logger"
	"idproof/internal/proofing"
	httptransport "idproof/internal/transport/http"
)

type invokeOptions struct {
	flow  string
	file  string
	print bool
}

func newInvokeCmd(root *rootFlags) *cobra.Command {
	opts := invokeOptions{}

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run one proofing invocation from an event file",
		Long: "Run one proofing invocation from a JSON event file (\"-\" reads stdin). " +
			"With --print the result body is written to stdout instead of the callback URL.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))
			stopWorkers := a.runWorkers(context.WithoutCancel(ctx))
			defer stopWorkers()

			return runInvoke(ctx, a.service, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.flow, "flow", "f", string(proofing.FlowResolution), "Flow to run: resolution, address or document")
	cmd.Flags().StringVar(&opts.file, "file", "-", "Event file, - for stdin")
	cmd.Flags().BoolVar(&opts.print, "print", false, "Print the result body instead of posting it to the callback URL")

	return cmd
}

func runInvoke(ctx context.Context, svc httptransport.Runner, opts invokeOptions, stdin io.Reader, stdout io.Writer) error {
	flow, err := proofing.ParseFlow(opts.flow)
	if err != nil {
		return err
	}

	data, err := readEvent(opts.file, stdin)
	if err != nil {
		return err
	}
	event, err := proofing.ParseEvent(flow, data)
	if err != nil {
		return err
	}
	req := event.Request(flow)

	if !opts.print {
		_, err = svc.Run(ctx, req, nil)
		return err
	}

	_, err = svc.Run(ctx, req, func(_ context.Context, body proofing.Body) error {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(body)
	})
	return err
}

func readEvent(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read event from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event: %w", err)
	}
	return data, nil
}

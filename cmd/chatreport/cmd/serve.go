package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cognicore/chatreport/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload and report HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := a.engine()
			if err != nil {
				return err
			}
			svc, st, err := a.service(ctx, eng)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := server.New(server.Config{
				Addr:      a.v.GetString("addr"),
				MaxUpload: a.v.GetInt64("max-upload-mb") << 20,
			}, svc)

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				return srv.Stop(context.Background())
			}
		},
	}
	cmd.Flags().String("addr", ":5000", "listen address")
	cmd.Flags().Int64("max-upload-mb", 64, "upload size limit in MiB")
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	return cmd
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Naim3097/BOOX/config"
	paymentsapi "github.com/Naim3097/BOOX/internal/api/payments_service_api"
	"github.com/Naim3097/BOOX/internal/leanx"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.LoadConfig(path)
}

func collectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collection",
		Short: "Show which collection UUID bills will be created under",
		Long: `Resolve the collection UUID from configuration without calling the gateway.
An explicit LEANX_COLLECTION_UUID wins; otherwise the middle segment of
LEANX_AUTH_TOKEN is used when it is a 36 character UUID.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Environment: %s\n", cfg.Gateway.Environment)
			fmt.Fprintf(out, "Endpoint:    %s\n", cfg.Gateway.Endpoint())

			collection, err := leanx.NewCredentialResolver(cfg.Gateway.AuthToken, cfg.Gateway.CollectionUUID).Resolve()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Collection:  %s\n", collection.UUID)
			fmt.Fprintf(out, "Source:      %s\n", collection.Source)
			return nil
		},
	}
}

func lookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup [invoiceNo]",
		Short: "Query the gateway directly for an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			resolver := leanx.NewCredentialResolver(cfg.Gateway.AuthToken, cfg.Gateway.CollectionUUID)
			token, err := resolver.AuthToken()
			if err != nil {
				return err
			}

			client := leanx.NewClient(cfg.Gateway.Endpoint(), token, cfg.Gateway.Timeout())
			details, err := client.LookupTransaction(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(details)
		},
	}
	return cmd
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [invoiceNo]",
		Short: "Ask a running server for the status of an invoice over gRPC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("grpc-addr")
			if addr == "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				addr = cfg.GRPC.Address
			}
			if strings.HasPrefix(addr, ":") {
				addr = "localhost" + addr
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")

			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return fmt.Errorf("dial %s: %w", addr, err)
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out, err := paymentsapi.NewClient(conn).CheckStatus(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := protojson.MarshalOptions{Multiline: true}.Marshal(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().String("grpc-addr", "", "Server gRPC address (defaults to grpc.address from config)")
	cmd.Flags().Duration("timeout", 10*time.Second, "Request timeout")
	return cmd
}

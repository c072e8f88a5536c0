package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/addressform/pkg/server"
)

func schemaCmd() *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the OpenAPI document",
		Long: `Print the OpenAPI 3 document of the HTTP API, as served at
/openapi.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := server.OpenAPI()
			if validate {
				if err := doc.Validate(cmd.Context()); err != nil {
					return fmt.Errorf("openapi: %w", err)
				}
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", true, "Validate the document before printing")

	return cmd
}

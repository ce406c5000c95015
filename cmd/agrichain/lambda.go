package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

func newLambdaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as an API Gateway proxy Lambda function",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, closeStore, err := buildHandler(context.Background(), a.cfg, a.logger)
			if err != nil {
				a.logger.Error("failed to build handler", "err", err)
				return err
			}
			defer closeStore()

			lambda.Start(h.Handle)
			return nil
		},
	}
}

package main

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/addressform/internal/config"
	"github.com/vango-dev/addressform/internal/errors"
	"github.com/vango-dev/addressform/pkg/addressform"
	"github.com/vango-dev/addressform/pkg/middleware"
	"github.com/vango-dev/addressform/pkg/submit"
)

// newSubmitter builds the configured sink, traced when tracing is on.
func newSubmitter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (addressform.Submitter, error) {
	var (
		sink addressform.Submitter
		err  error
	)

	switch cfg.Submit.Sink {
	case config.SinkLog:
		sink = submit.NewLog(logger)
	case config.SinkMemory:
		sink = submit.NewMemory()
	case config.SinkDisk:
		sink, err = submit.NewDisk(cfg.Submit.Dir)
	case config.SinkS3:
		sink, err = newS3Sink(ctx, cfg.Submit)
	default:
		return nil, errors.New(errors.CodeSinkConfig).
			WithDetail("Unknown sink " + cfg.Submit.Sink)
	}
	if err != nil {
		return nil, errors.New(errors.CodeSinkConfig).
			WithDetail("Cannot create the " + cfg.Submit.Sink + " sink").
			Wrap(err)
	}

	if cfg.Tracing {
		sink = middleware.TraceSubmitter(sink, cfg.Submit.Sink)
	}
	return sink, nil
}

// formOptions returns the options every form built from cfg shares.
func formOptions(cfg *config.Config, messages *addressform.Messages) []addressform.Option {
	opts := []addressform.Option{addressform.WithMessages(messages)}
	if cfg.Submit.Sanitize {
		opts = append(opts, addressform.WithCleaner(submit.NewSanitizer()))
	}
	return opts
}

func newS3Sink(ctx context.Context, sc config.SubmitConfig) (*submit.S3, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if sc.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(sc.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
			o.UsePathStyle = true
		}
	})
	return submit.NewS3(client, sc.Bucket, sc.Prefix)
}

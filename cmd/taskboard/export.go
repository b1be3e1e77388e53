package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vango-dev/taskboard/internal/config"
	"github.com/vango-dev/taskboard/internal/errors"
	"github.com/vango-dev/taskboard/internal/export"
)

type exportFlags struct {
	bucket   string
	prefix   string
	region   string
	endpoint string
	dir      string
}

func exportCmd(g *globalFlags) *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of the task list",
		Long: `Fetch the task list from the task API and write it as a JSON
snapshot to an S3 bucket or, with --dir, to a local directory.

S3 credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY
and AWS_SESSION_TOKEN.

Examples:
  taskboard export --bucket=my-bucket --prefix=snapshots/
  taskboard export --endpoint=http://localhost:9000 --bucket=local
  taskboard export --dir=./backups`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runExport(ctx, g, f)
		},
	}

	cmd.Flags().StringVar(&f.bucket, "bucket", "", "S3 bucket (default from config)")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Object key prefix (default from config)")
	cmd.Flags().StringVar(&f.region, "region", "", "S3 region (default from config)")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "S3-compatible endpoint URL")
	cmd.Flags().StringVar(&f.dir, "dir", "", "Write to a local directory instead of S3")

	return cmd
}

func runExport(ctx context.Context, g *globalFlags, f exportFlags) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	applyExportFlags(&cfg.Export, f)

	logger := setupLogger(cfg)

	store, err := newStore(cfg.Export, f.dir)
	if err != nil {
		return err
	}

	client := newTaskClient(cfg, nil)
	exp := export.New(client, store,
		export.WithPrefix(cfg.Export.Prefix),
		export.WithSource(client.BaseURL()),
		export.WithLogger(logger.With("component", "export")),
	)

	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	success("Exported %d tasks (%d completed)", res.Total, res.Completed)
	info("%s", res.Location)
	return nil
}

func applyExportFlags(c *config.ExportConfig, f exportFlags) {
	if f.bucket != "" {
		c.Bucket = f.bucket
	}
	if f.prefix != "" {
		c.Prefix = f.prefix
	}
	if f.region != "" {
		c.Region = f.region
	}
	if f.endpoint != "" {
		c.Endpoint = f.endpoint
	}
}

// newStore picks the local directory when dir is set and S3 otherwise.
func newStore(c config.ExportConfig, dir string) (export.Store, error) {
	if dir != "" {
		store, err := export.NewDiskStore(dir)
		if err != nil {
			return nil, errors.New("TB302").
				WithDetail("Could not create " + dir).
				Wrap(err)
		}
		return store, nil
	}
	if c.Bucket == "" {
		return nil, errors.New("TB301").
			WithSuggestion("Pass --bucket, set export.bucket or use --dir for a local export")
	}
	client := export.NewS3Client(export.S3Config{Region: c.Region, Endpoint: c.Endpoint})
	return export.NewS3Store(client, c.Bucket), nil
}

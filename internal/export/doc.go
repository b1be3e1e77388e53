// Package export writes JSON snapshots of the task list to object storage
// or a local directory.
//
//	client := export.NewS3Client(export.S3Config{Region: "eu-west-1"})
//	exp := export.New(tasksClient, export.NewS3Store(client, "my-bucket"),
//	    export.WithPrefix("snapshots/"))
//	loc, err := exp.Run(ctx)
package export

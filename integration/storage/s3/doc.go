// Package s3 provides an Amazon S3 and S3-compatible storage engine for
// multiform uploads.
//
// It implements the storage.Engine interface using the AWS SDK v2 and works
// with Amazon S3, MinIO, DigitalOcean Spaces, Wasabi, and other S3-compatible
// services.
//
// Basic usage:
//
//	cfg := s3.Config{
//		Bucket:      "my-app-uploads",
//		Region:      "us-east-1",
//		AccessKeyID: "AKIA...", // Optional - uses IAM roles if empty
//		SecretKey:   "...",     // Optional - uses IAM roles if empty
//	}
//
//	engine, err := s3.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	parser, err := multiform.New(engine,
//		multiform.WithLimits(multiform.Limits{MaxFileSize: 25 << 20}),
//	)
//
// For MinIO and other self-hosted services set Endpoint and ForcePathStyle:
//
//	cfg := s3.Config{
//		Bucket:         "uploads",
//		Region:         "us-east-1",
//		Endpoint:       "http://localhost:9000",
//		ForcePathStyle: true,
//	}
//
// PutObject requires the object size up front, so the engine accumulates the
// body before uploading. Size limits are enforced upstream by the parser
// before bytes reach this engine, which bounds that accumulation.
package s3

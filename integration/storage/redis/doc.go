// Package redis provides a Redis-backed storage engine for multiform
// uploads, suited to short-lived artifacts such as import staging files or
// attachments awaiting virus scanning.
//
// Uploads are stored as string values under generated keys with an optional
// TTL, so abandoned artifacts expire on their own.
//
// Basic usage:
//
//	cfg := redis.Config{
//		ConnectionURL: "redis://localhost:6379/0",
//		TTL:           time.Hour,
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	engine := redis.New(client, redis.WithTTL(cfg.TTL))
//
//	parser, err := multiform.New(engine,
//		multiform.WithLimits(multiform.Limits{MaxFileSize: 1 << 20}),
//	)
//
// Connect validates the URL, retries with a configurable interval, and
// verifies connectivity with a ping before returning the client. Size limits
// are enforced upstream by the parser, which bounds the in-memory
// accumulation a SET requires.
package redis

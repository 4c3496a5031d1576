package services

import (
	"context"
	"time"
)

// notifyTimeout bounds best-effort notification dispatch so a slow SMTP server
// cannot hold up the request that triggered it.
const notifyTimeout = 10 * time.Second

func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}

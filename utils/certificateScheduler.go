package utils

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// InitializeCertificateScheduler runs job on the given cron spec. Each run gets
// its own deadline so a stuck render service cannot pile up overlapping runs.
func InitializeCertificateScheduler(spec string, timeout time.Duration, job func(ctx context.Context) error) (*cron.Cron, error) {
	log.Println("[CERTIFICATE-SCHEDULER] Initializing certificate re-issuance scheduler...")

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(spec, func() {
		log.Println("[CERTIFICATE-SCHEDULER] Running certificate re-issuance...")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			log.Printf("[CERTIFICATE-SCHEDULER] Re-issuance failed: %v", err)
			return
		}
		log.Printf("[CERTIFICATE-SCHEDULER] Re-issuance finished in %s", time.Since(start))
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[CERTIFICATE-SCHEDULER] Certificate scheduler started with spec %q", spec)
	return c, nil
}

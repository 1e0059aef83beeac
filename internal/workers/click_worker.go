// Package workers implements the asynchronous click recording pipeline.
package workers

import (
	"context"
	"log"
	"sync"
	"time"

	errs "github.com/lmercier/urlalias/internal/errors"
	"github.com/lmercier/urlalias/internal/models"
	"github.com/lmercier/urlalias/internal/repository"
)

// Per-insert bound so a stalled store never wedges a worker.
const clickInsertTimeout = 5 * time.Second

// StartClickWorkers launches a pool of goroutines draining clickEvents into
// the click repository. Redirect resolution stays fast because it only ever
// enqueues; the actual database write happens here. The returned WaitGroup
// is done once the channel has been closed and fully drained, which is what
// graceful shutdown waits on.
func StartClickWorkers(workerCount int, clickEvents <-chan models.ClickEvent, clickRepo repository.ClickRepository) *sync.WaitGroup {
	log.Printf("Starting %d click worker(s)...", workerCount)

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			clickWorker(clickEvents, clickRepo)
		}()
	}
	return &wg
}

// clickWorker persists click events until the channel closes. Failures are
// logged and never retried: click recording is a best-effort side channel
// and one lost click must not stall the rest of the stream.
func clickWorker(clickEvents <-chan models.ClickEvent, clickRepo repository.ClickRepository) {
	for event := range clickEvents {
		click := &models.Click{
			ShortURLID: event.ShortURLID,
			ClickedAt:  event.ClickedAt,
		}

		ctx, cancel := context.WithTimeout(context.Background(), clickInsertTimeout)
		err := clickRepo.CreateClick(ctx, click)
		cancel()
		if err != nil {
			log.Printf("ERROR: %v", errs.ErrClickRecordingFailed{
				ShortURLID: event.ShortURLID,
				Reason:     err.Error(),
			})
		}
	}
}

package monitor

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/lmercier/urlalias/internal/models"
	"github.com/lmercier/urlalias/internal/repository"
)

// URLMonitor periodically sweeps the active records: it logs a notification
// the first time a record is seen past its expiry (the record becomes Gone
// at that instant without any write, so this is the only place the
// transition gets surfaced), and probes the targets of still-resolvable
// records to flag destinations that stopped answering.
type URLMonitor struct {
	shortURLRepo repository.ShortURLRepository
	interval     time.Duration

	mu              sync.Mutex
	knownReachable  map[uint]bool // previous probe result per record
	notifiedExpired map[uint]bool // records already reported as expired

	httpClient *http.Client
	nowFunc    func() time.Time
}

// NewURLMonitor creates and returns a new URLMonitor sweeping at the given
// interval.
func NewURLMonitor(shortURLRepo repository.ShortURLRepository, interval time.Duration) *URLMonitor {
	return &URLMonitor{
		shortURLRepo:    shortURLRepo,
		interval:        interval,
		knownReachable:  make(map[uint]bool),
		notifiedExpired: make(map[uint]bool),
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		nowFunc:         time.Now,
	}
}

// Start runs the sweep loop until the program stops. Launch it in its own
// goroutine.
func (m *URLMonitor) Start() {
	log.Printf("[MONITOR] Starting URL monitor with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.sweep()
	for range ticker.C {
		m.sweep()
	}
}

// sweep inspects every active record once.
func (m *URLMonitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	shortURLs, err := m.shortURLRepo.ListActive(ctx)
	if err != nil {
		log.Printf("[MONITOR] ERROR retrieving short URLs: %v", err)
		return
	}

	now := m.nowFunc()
	for i := range shortURLs {
		m.inspect(&shortURLs[i], now)
	}
}

func (m *URLMonitor) inspect(shortURL *models.ShortURL, now time.Time) {
	if now.After(shortURL.ExpiresAt) {
		m.mu.Lock()
		seen := m.notifiedExpired[shortURL.ID]
		m.notifiedExpired[shortURL.ID] = true
		m.mu.Unlock()

		if !seen {
			log.Printf("[NOTIFICATION] Short URL %s (%s) expired at %s",
				shortURL.ShortKey, shortURL.OriginalURL, shortURL.ExpiresAt.Format(time.RFC3339))
		}
		// Expired targets are no longer probed.
		return
	}

	reachable := m.isURLReachable(shortURL.OriginalURL)

	m.mu.Lock()
	previous, known := m.knownReachable[shortURL.ID]
	m.knownReachable[shortURL.ID] = reachable
	m.mu.Unlock()

	if !known {
		log.Printf("[MONITOR] Initial state for %s (%s): %s",
			shortURL.ShortKey, shortURL.OriginalURL, formatState(reachable))
		return
	}
	if reachable != previous {
		log.Printf("[NOTIFICATION] Target of %s (%s) changed from %s to %s",
			shortURL.ShortKey, shortURL.OriginalURL, formatState(previous), formatState(reachable))
	}
}

// isURLReachable probes a target with a bounded HEAD request. 2xx and 3xx
// count as reachable.
func (m *URLMonitor) isURLReachable(target string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		log.Printf("[MONITOR] Error creating request for '%s': %v", target, err)
		return false
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func formatState(reachable bool) string {
	if reachable {
		return "REACHABLE"
	}
	return "UNREACHABLE"
}

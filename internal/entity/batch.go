package entity

import (
	"time"

	"github.com/google/uuid"

	"listing-tracker/constants"
)

// BatchItem tracks one URL inside a batch run.
type BatchItem struct {
	Index   int                  `json:"index"`
	URL     string               `json:"url"`
	Status  constants.ItemStatus `json:"status"`
	Message string               `json:"message"`
}

// BatchProgress is the shared record tracking a multi-URL run. The item list
// length is fixed at creation and never resized. Invariant at every
// persisted snapshot: Completed + Failed <= Total.
type BatchProgress struct {
	ID            uuid.UUID   `json:"id"`
	Total         int         `json:"total"`
	Completed     int         `json:"completed"`
	Failed        int         `json:"failed"`
	CurrentStatus string      `json:"currentStatus"`
	Items         []BatchItem `json:"items"`
	CreatedAt     time.Time   `json:"createdAt"`
	ExpireAt      time.Time   `json:"expireAt"` // store-side GC horizon
}

// NewBatchProgress creates a progress record with every item pending.
func NewBatchProgress(urls []string, retention time.Duration) *BatchProgress {
	now := time.Now().UTC()
	items := make([]BatchItem, len(urls))
	for i, u := range urls {
		items[i] = BatchItem{Index: i, URL: u, Status: constants.ItemStatusPending}
	}
	return &BatchProgress{
		ID:            uuid.New(),
		Total:         len(urls),
		Items:         items,
		CurrentStatus: "Starting batch...",
		CreatedAt:     now,
		ExpireAt:      now.Add(retention),
	}
}

// Recount recomputes the aggregate counters from the item list.
func (b *BatchProgress) Recount() {
	completed, failed := 0, 0
	for _, it := range b.Items {
		switch it.Status {
		case constants.ItemStatusSuccess:
			completed++
		case constants.ItemStatusError:
			failed++
		}
	}
	b.Completed = completed
	b.Failed = failed
}

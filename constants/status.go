package constants

// ItemStatus is the canonical status for one URL inside a batch run.
type ItemStatus string

// Stable values (store these exact strings in the batch_status document).
const (
	ItemStatusPending  ItemStatus = "pending"  // queued, nothing started
	ItemStatusScraping ItemStatus = "scraping" // fetching page content
	ItemStatusParsing  ItemStatus = "parsing"  // extracting structured fields
	ItemStatusSaving   ItemStatus = "saving"   // assembling + persisting the listing
	ItemStatusSuccess  ItemStatus = "success"  // terminal
	ItemStatusError    ItemStatus = "error"    // terminal
)

// Terminal reports whether the status is final. Items never transition out of
// a terminal status.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusSuccess || s == ItemStatusError
}

package domain

// HistoryEntry is what the navigation layer stores for one visited location.
type HistoryEntry struct {
	URL        string              `json:"url"`
	Components []ComponentSnapshot `json:"components"`
}

package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// CardsGeneratedData contains data for CardsGenerated events
type CardsGeneratedData struct {
	DeckID    int64    `json:"deck_id"`
	RunID     string   `json:"run_id"`
	CardCount int      `json:"card_count"`
	Ports     []string `json:"ports"`
	Override  bool     `json:"market_intelligence_applied"`
}

// EventType returns the event type for CardsGeneratedData
func (d *CardsGeneratedData) EventType() EventType {
	return CardsGenerated
}

// CardsImportedData contains data for CardsImported events
type CardsImportedData struct {
	DeckID    int64 `json:"deck_id"`
	CardCount int   `json:"card_count"`
	AutoID    bool  `json:"auto_id"`
}

// EventType returns the event type for CardsImportedData
func (d *CardsImportedData) EventType() EventType {
	return CardsImported
}

// MarketIntelligenceActivatedData contains data for MarketIntelligenceActivated events
type MarketIntelligenceActivatedData struct {
	DeckID int64  `json:"deck_id"`
	ID     string `json:"id"`
	Name   string `json:"name"`
}

// EventType returns the event type for MarketIntelligenceActivatedData
func (d *MarketIntelligenceActivatedData) EventType() EventType {
	return MarketIntelligenceActivated
}

// DecisionRecordedData contains data for DecisionRecorded events
type DecisionRecordedData struct {
	Room      string `json:"room"`
	UserID    int64  `json:"user_id"`
	Week      int    `json:"week"`
	Port      string `json:"port"`
	CardID    string `json:"card_id"`
	Decision  string `json:"decision"`
	Quantity  int    `json:"quantity"`
	Duplicate bool   `json:"duplicate"`
}

// EventType returns the event type for DecisionRecordedData
func (d *DecisionRecordedData) EventType() EventType {
	return DecisionRecorded
}

// PerformanceRebuiltData contains data for PerformanceRebuilt events
type PerformanceRebuiltData struct {
	Room         string `json:"room"`
	UserID       int64  `json:"user_id"`
	Weeks        int    `json:"weeks"`
	TotalRevenue int64  `json:"total_revenue"`
}

// EventType returns the event type for PerformanceRebuiltData
func (d *PerformanceRebuiltData) EventType() EventType {
	return PerformanceRebuilt
}

// PerformanceWeekMergedData contains data for PerformanceWeekMerged events
type PerformanceWeekMergedData struct {
	Room           string   `json:"room"`
	UserID         int64    `json:"user_id"`
	Week           int      `json:"week"`
	Fields         []string `json:"fields"`
	TotalRevenue   int64    `json:"total_revenue"`
	TotalPenalties int64    `json:"total_penalties"`
}

// EventType returns the event type for PerformanceWeekMergedData
func (d *PerformanceWeekMergedData) EventType() EventType {
	return PerformanceWeekMerged
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Key       string  `json:"key"`
	SizeBytes int64   `json:"size_bytes"`
	Duration  float64 `json:"duration_seconds"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// SystemStatusData contains data for SystemStatusChanged events
type SystemStatusData struct {
	Healthy   bool              `json:"healthy"`
	Databases map[string]string `json:"databases"`
}

// EventType returns the event type for SystemStatusData
func (d *SystemStatusData) EventType() EventType {
	return SystemStatusChanged
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

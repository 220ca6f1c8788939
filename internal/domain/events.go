package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventHydrationCompleted EventType = "HydrationCompleted"
	EventSelectionChanged   EventType = "SelectionChanged"
	EventValuePushed        EventType = "ValuePushed"
	EventValueCleared       EventType = "ValueCleared"
	EventHeightRequested    EventType = "HeightRequested"
	EventSearchStarted      EventType = "SearchStarted"
	EventPageLoaded         EventType = "PageLoaded"
	EventError              EventType = "Error"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// HydrationCompletedEvent is emitted once the stored value has been resolved
// into the initial selection
type HydrationCompletedEvent struct {
	Selected int      // entries in the initial selection
	Dropped  []string // stored ids that no longer resolve
	Degraded bool     // stored value had the wrong shape and was ignored
}

func (e HydrationCompletedEvent) Type() EventType { return EventHydrationCompleted }

// SelectionChangedEvent is emitted after every effective selection mutation
type SelectionChangedEvent struct {
	Added   []string
	Removed []string
	Total   int
}

func (e SelectionChangedEvent) Type() EventType { return EventSelectionChanged }

// ValuePushedEvent is emitted after a new value was written to the field store
type ValuePushedEvent struct {
	Mode  Mode
	Value []byte // JSON wire form
}

func (e ValuePushedEvent) Type() EventType { return EventValuePushed }

// ValueClearedEvent is emitted after the field store value was cleared
type ValueClearedEvent struct{}

func (e ValueClearedEvent) Type() EventType { return EventValueCleared }

// HeightRequestedEvent is emitted when the widget asks its host for a new frame height
type HeightRequestedEvent struct {
	Pixels int
}

func (e HeightRequestedEvent) Type() EventType { return EventHeightRequested }

// SearchStartedEvent is emitted when a new query becomes current
type SearchStartedEvent struct {
	Query      Query
	Generation uint64
}

func (e SearchStartedEvent) Type() EventType { return EventSearchStarted }

// PageLoadedEvent is emitted when a result page is fetched under the current generation
type PageLoadedEvent struct {
	Query Query
	Index int
	Count int
}

func (e PageLoadedEvent) Type() EventType { return EventPageLoaded }

// ErrorEvent is emitted when an operation fails with a user-facing error
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

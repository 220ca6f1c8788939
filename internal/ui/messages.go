package ui

import (
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/binding"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/eventbus"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/results"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// hydratedMsg carries the outcome of the initial hydration
type hydratedMsg struct {
	report binding.Report
	err    error
}

// pageMsg carries one loaded result page, tagged with the generation of the
// search that requested it
type pageMsg struct {
	gen  uint64
	page results.Page[domain.Item]
	err  error
}

// categoriesMsg contains the flattened category tree
type categoriesMsg struct {
	categories []domain.FlatCategory
	err        error
}

// mutationMsg contains the result of a selection change
type mutationMsg struct {
	verb string
	err  error
}

// pagerMsg contains the result of a pager command
type pagerMsg struct {
	err error
}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}

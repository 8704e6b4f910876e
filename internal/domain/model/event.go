package model

import "time"

// Analytics event names emitted by the page and the view.
const (
	EventPageView       = "page_view"
	EventDataLoadOK     = "data_load_success"
	EventDataLoadError  = "data_load_error"
	EventNavClick       = "nav_click"
	EventTooltipView    = "tooltip_view"
	EventDonationCopy   = "donation_copy"
	EventPrivacyAccept  = "privacy_accept"
	EventPrivacyDismiss = "privacy_dismiss"
)

var knownEvents = map[string]struct{}{
	EventPageView:       {},
	EventDataLoadOK:     {},
	EventDataLoadError:  {},
	EventNavClick:       {},
	EventTooltipView:    {},
	EventDonationCopy:   {},
	EventPrivacyAccept:  {},
	EventPrivacyDismiss: {},
}

// IsKnownEvent reports whether name is one of the recorded analytics events.
func IsKnownEvent(name string) bool {
	_, ok := knownEvents[name]
	return ok
}

type Event struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
	Ts     int64             `json:"ts_ms"`
}

func NewEvent(name string, params map[string]string) Event {
	return Event{Name: name, Params: params, Ts: time.Now().UnixMilli()}
}

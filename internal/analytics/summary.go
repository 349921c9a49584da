package analytics

import (
	"fmt"
	"time"

	"github.com/folio-sh/folio/internal/statedb"
)

// Counter reads grouped counts.
type Counter interface {
	CountEvents(since time.Time) ([]statedb.EventCount, error)
}

// Summary is the stats view over a window of events.
type Summary struct {
	Since     time.Time            `json:"since"`
	Total     int                  `json:"total"`
	PageViews []statedb.EventCount `json:"pageViews"`
	Events    []statedb.EventCount `json:"events"`
	Forms     FormStats            `json:"forms"`
	Outbound  []statedb.EventCount `json:"outbound"`
	Social    []statedb.EventCount `json:"social,omitempty"`
}

// FormStats counts contact form outcomes.
type FormStats struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// Summarize groups events recorded at or after since.
func Summarize(c Counter, since time.Time) (*Summary, error) {
	counts, err := c.CountEvents(since)
	if err != nil {
		return nil, fmt.Errorf("analytics: summarize: %w", err)
	}

	s := &Summary{Since: since}
	for _, ec := range counts {
		s.Total += ec.Count
		switch ec.Kind {
		case KindPageView:
			s.PageViews = append(s.PageViews, ec)
		case KindEvent:
			s.Events = append(s.Events, ec)
		case KindOutbound:
			s.Outbound = append(s.Outbound, ec)
		case KindSocial:
			s.Social = append(s.Social, ec)
		case KindFormSubmission:
			if ec.Action == "Submission Success" {
				s.Forms.Success += ec.Count
			} else {
				s.Forms.Failed += ec.Count
			}
		}
	}
	return s, nil
}

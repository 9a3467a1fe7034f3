package model

import (
	"time"
)

// Fellow is the developer being placed with a partner
type Fellow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email" masq:"secret"`
	Location string `json:"location,omitempty"`
}

// Placement is an assignment of a fellow to a partner, as reported by the
// allocations service. It is never written by this service.
type Placement struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	Fellow     Fellow    `json:"fellow"`
	ClientID   string    `json:"client_id"`
	ClientName string    `json:"client_name"`
	StartDate  string    `json:"start_date,omitempty"`
	EndDate    string    `json:"end_date,omitempty"`
}

// CreatedAfter reports whether the placement was created strictly after t
func (p *Placement) CreatedAfter(t time.Time) bool {
	return p.CreatedAt.After(t)
}

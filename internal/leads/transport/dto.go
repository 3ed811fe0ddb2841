package transport

import (
	"time"
)

// Request DTOs

// ListLeadsRequest carries the raw listing query. Page, Limit and Sort are
// left unparsed so the service owns defaults and clamping; Filters holds
// every other query parameter.
type ListLeadsRequest struct {
	Page    string
	Limit   string
	Sort    string
	Filters map[string]string
}

// Response DTOs

// LeadResponse is the public shape of a lead. The owner is never exposed.
type LeadResponse struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Company        string     `json:"company"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
	Score          int        `json:"score"`
	LeadValue      float64    `json:"lead_value"`
	LastActivityAt *time.Time `json:"last_activity_at"`
	IsQualified    bool       `json:"is_qualified"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LeadListResponse is one page of leads.
type LeadListResponse struct {
	Data       []LeadResponse `json:"data"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int64          `json:"total"`
	TotalPages int64          `json:"totalPages"`
}

// DeleteLeadResponse acknowledges a deletion.
type DeleteLeadResponse struct {
	Success bool `json:"success"`
}

package management

import (
	"lead_management_backend/internal/leads/domain"
	"lead_management_backend/internal/leads/transport"
)

// ToLeadResponse maps a domain lead to its public shape, dropping the owner.
func ToLeadResponse(lead domain.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:             lead.ID,
		FirstName:      lead.FirstName,
		LastName:       lead.LastName,
		Email:          lead.Email,
		Phone:          lead.Phone,
		Company:        lead.Company,
		City:           lead.City,
		State:          lead.State,
		Source:         lead.Source,
		Status:         lead.Status,
		Score:          lead.Score,
		LeadValue:      lead.LeadValue,
		LastActivityAt: lead.LastActivityAt,
		IsQualified:    lead.IsQualified,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}

func toLeadResponses(leads []domain.Lead) []transport.LeadResponse {
	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = ToLeadResponse(lead)
	}
	return items
}

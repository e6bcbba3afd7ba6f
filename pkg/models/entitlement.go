package models

// Entitlement is a read-only view of the billing system's entitlement row
// for a customer. Rows are written by an external billing webhook; this
// service only ever reads them.
type Entitlement struct {
	CustomerID string `json:"customer_id" db:"customer_id"`
	Status     string `json:"status" db:"status"`
	Tier       string `json:"tier" db:"tier"`
}

// EntitlementStatusActive is the only status that authorizes token issuance
// or download. Every other value, and a missing row, means "not entitled".
const EntitlementStatusActive = "active"

// Active reports whether the entitlement authorizes a download.
func (e *Entitlement) Active() bool {
	return e != nil && e.Status == EntitlementStatusActive
}

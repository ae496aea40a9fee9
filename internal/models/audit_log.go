package models

// Audited actions.
const (
	AuditLogin                  = "LOGIN"
	AuditCreateAccount          = "CREATE_ACCOUNT"
	AuditDeleteAccount          = "DELETE_ACCOUNT"
	AuditReconcileAccount       = "RECONCILE_ACCOUNT"
	AuditBulkDeleteTransactions = "BULK_DELETE_TRANSACTIONS"
	AuditRequestDeletion        = "REQUEST_DELETION"
)

// Audited resource types.
const (
	ResourceUser        = "user"
	ResourceAccount     = "account"
	ResourceTransaction = "transaction"
)

// AuditLog records sensitive user operations. Changes holds a JSON snapshot
// of what moved, for example the drift repaired by a reconcile.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}

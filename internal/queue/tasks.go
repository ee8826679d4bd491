package queue

const (
	TypeTenantBootstrap = "tenant:bootstrap"
)

// TenantBootstrapPayload asks the worker to ensure a tenant exists for the
// domain and run the flat-file prompt import against it.
type TenantBootstrapPayload struct {
	TenantName string `json:"tenant_name"`
	Domain     string `json:"domain"`
	AdminEmail string `json:"admin_email"`
}

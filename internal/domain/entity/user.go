package entity

// Role constants
const (
	RoleAdmin              = "ADMIN"
	RoleRequester          = "REQUESTER"
	RoleApprover           = "APPROVER"
	RoleProcurementOfficer = "PROCUREMENT_OFFICER"
	RoleWarehouseOperator  = "WAREHOUSE_OPERATOR"
	RoleFinance            = "FINANCE"
)

// Permission constants gating workflow operations
const (
	PermissionCreatePR      = "CREATE_PR"
	PermissionApprovePR     = "APPROVE_PR"
	PermissionCreatePO      = "CREATE_PO"
	PermissionApprovePO     = "APPROVE_PO"
	PermissionReceiveGoods  = "RECEIVE_GOODS"
	PermissionManageVendors = "MANAGE_VENDORS"
	PermissionManageUsers   = "MANAGE_USERS"
	PermissionViewReports   = "VIEW_REPORTS"
)

// User is the authenticated caller as surfaced by the identity
// collaborator. Permission computation happens outside the workflow
// engine; the engine only checks membership.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Department  string   `json:"department"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether the user carries the given permission.
func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Actor returns the user as a document actor.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Email: u.Email}
}

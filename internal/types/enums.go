package types

// Group member roles
const (
	RoleHost   = "host"
	RoleCoHost = "co-host"
	RoleMember = "member"
)

// Join request statuses
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// Notification types
const (
	NotificationJoinApproved = "GROUP_JOIN_APPROVED"
	NotificationJoinRejected = "GROUP_JOIN_REJECTED"
)

// Defaults applied to members admitted through a join request
const (
	DefaultAvatarColor = "#6366F1"
	DefaultExpertise   = "Explorer"
	HostAvatarColor    = "#F97316"
	HostExpertise      = "Trip Host"
)

// CanManageRequests reports whether a member role may approve or reject join requests.
func CanManageRequests(role string) bool {
	return role == RoleHost || role == RoleCoHost
}

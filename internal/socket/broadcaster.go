package socket

// Broadcaster provides high-level methods for broadcasting events. A nil
// Broadcaster drops everything, which lets services run without a hub.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) enabled() bool {
	return b != nil && b.hub != nil
}

// ============================================
// Notification Broadcasting
// ============================================

// SendNotification pushes a notification to every identifier the user may
// have connected with.
func (b *Broadcaster) SendNotification(userIDs []string, notification map[string]interface{}) {
	b.SendToUsers(userIDs, MessageNotification, notification)
}

func (b *Broadcaster) SendNotificationCount(userIDs []string, total, unseen int) {
	b.SendToUsers(userIDs, MessageNotificationCount, map[string]interface{}{
		"total":  total,
		"unseen": unseen,
	})
}

// SendToUsers sends one message to several users, skipping blanks and
// repeats.
func (b *Broadcaster) SendToUsers(userIDs []string, msgType MessageType, payload map[string]interface{}) {
	if !b.enabled() {
		return
	}
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		b.hub.SendToUser(id, msgType, payload)
	}
}

// ============================================
// Group Broadcasting
// ============================================

func (b *Broadcaster) toGroup(groupID string, msgType MessageType, payload map[string]interface{}, excludeUserID string) {
	if !b.enabled() {
		return
	}
	payload["groupId"] = groupID
	b.hub.SendToRoom(GroupRoom(groupID), msgType, payload, excludeUserID)
}

// BroadcastJoinRequestCreated goes to the group's managers directly, not to
// the group room: request notes are not for every member.
func (b *Broadcaster) BroadcastJoinRequestCreated(groupID string, request map[string]interface{}, managerIDs []string) {
	b.SendToUsers(managerIDs, MessageGroupRequestCreated, map[string]interface{}{
		"groupId": groupID,
		"request": request,
	})
}

func (b *Broadcaster) BroadcastJoinRequestResolved(groupID, requestID, status, resolvedBy string) {
	b.toGroup(groupID, MessageGroupRequestResolved, map[string]interface{}{
		"requestId":  requestID,
		"status":     status,
		"resolvedBy": resolvedBy,
	}, "")
}

func (b *Broadcaster) BroadcastMemberAdded(groupID string, member map[string]interface{}, currentMembers int) {
	b.toGroup(groupID, MessageGroupMemberAdded, map[string]interface{}{
		"member":         member,
		"currentMembers": currentMembers,
	}, "")
}

func (b *Broadcaster) BroadcastMemberPromoted(groupID, memberID, role, promotedBy string) {
	b.toGroup(groupID, MessageGroupMemberPromoted, map[string]interface{}{
		"memberId": memberID,
		"role":     role,
	}, promotedBy)
}

func (b *Broadcaster) BroadcastCommentAdded(groupID string, comment map[string]interface{}, authorID string) {
	b.toGroup(groupID, MessageGroupCommentAdded, map[string]interface{}{
		"comment": comment,
	}, authorID)
}

func (b *Broadcaster) BroadcastCommentLiked(groupID, commentID string, likes int) {
	b.toGroup(groupID, MessageGroupCommentLiked, map[string]interface{}{
		"commentId": commentID,
		"likes":     likes,
	}, "")
}

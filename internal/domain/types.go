package domain

import "time"

type ChatKind string

const (
	ChatKindDirect ChatKind = "DIRECT"
	ChatKindGroup  ChatKind = "GROUP"
)

// Membership limits enforced at add-time.
const (
	DirectChatMembers = 2
	MaxGroupMembers   = 2000
)

// StatusTTL is the fixed lifetime of a status. The expiry is always
// computed server-side; a client-supplied expiry is ignored.
const StatusTTL = 24 * time.Hour

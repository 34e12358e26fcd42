package model

// InteractionTypes lists accepted interaction kinds.
var InteractionTypes = map[string]bool{
	"call":    true,
	"email":   true,
	"meeting": true,
	"demo":    true,
	"visit":   true,
	"note":    true,
}

// ActionItemStatuses lists accepted action item states.
var ActionItemStatuses = map[string]bool{
	DefaultActionItemStatus:    true,
	ActionItemStatusInProgress: true,
	ActionItemStatusDone:       true,
}

// ActionItemPriorities lists accepted action item priorities.
var ActionItemPriorities = map[string]bool{
	"low":                     true,
	DefaultActionItemPriority: true,
	"high":                    true,
}

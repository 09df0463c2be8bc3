package messaging

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback actions. Callback data is always "<action>:<dealID>".
const (
	ActionChat        = "chat"
	ActionQuit        = "quit"
	ActionCreative    = "creative"
	ActionSelfApprove = "self_approve"
	ActionSelfDiscard = "self_discard"
	ActionPeerApprove = "peer_approve"
	ActionPeerReject  = "peer_reject"
)

// CallbackData encodes an action and a deal id into a callback token
func CallbackData(action string, dealID int64) string {
	return fmt.Sprintf("%s:%d", action, dealID)
}

// ParseCallbackData decodes a callback token
func ParseCallbackData(data string) (string, int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, fmt.Errorf("invalid callback data: %q", data)
	}

	dealID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid deal id in callback data %q: %w", data, err)
	}

	return parts[0], dealID, nil
}

// IsWorkflowAction reports whether the action belongs to the creative workflow
func IsWorkflowAction(action string) bool {
	switch action {
	case ActionSelfApprove, ActionSelfDiscard, ActionPeerApprove, ActionPeerReject:
		return true
	}
	return false
}

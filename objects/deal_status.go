package objects

// Creative decision taken by the reviewing party
type CreativeDecision string

const (
	DecisionApprove CreativeDecision = "approve"
	DecisionReject  CreativeDecision = "reject"
)

// Statuses under which the two parties may talk through the bot, in
// lifecycle order.
var relayEligibleStatuses = []DealStatus{
	DealStatusAgreed,
	DealStatusAwaitingPayment,
	DealStatusPaid,
	DealStatusCreativeDraft,
	DealStatusCreativeReview,
	DealStatusScheduled,
	DealStatusPosted,
}

var creativeEligibleStatuses = []DealStatus{
	DealStatusPaid,
	DealStatusCreativeDraft,
	DealStatusCreativeReview,
}

// RelayEligibleStatuses returns a copy of the relay-eligible status set
func RelayEligibleStatuses() []DealStatus {
	return append([]DealStatus(nil), relayEligibleStatuses...)
}

// CreativeEligibleStatuses returns a copy of the creative-eligible status set
func CreativeEligibleStatuses() []DealStatus {
	return append([]DealStatus(nil), creativeEligibleStatuses...)
}

// IsEligibleForRelay reports whether a deal in this status may be relayed or
// negotiated right now. Terminal statuses tear sessions down.
func IsEligibleForRelay(status DealStatus) bool {
	return containsStatus(relayEligibleStatuses, status)
}

// IsCreativeEligible reports whether creative fields may change in this status
func IsCreativeEligible(status DealStatus) bool {
	return containsStatus(creativeEligibleStatuses, status)
}

// StatusAfterDecision maps a reviewer decision to the resulting deal status.
// A rejection arriving after the status drifted out of the creative subset
// leaves the status unchanged.
func StatusAfterDecision(current DealStatus, decision CreativeDecision) DealStatus {
	switch decision {
	case DecisionApprove:
		return DealStatusScheduled
	case DecisionReject:
		if IsCreativeEligible(current) {
			return DealStatusCreativeDraft
		}
	}
	return current
}

func containsStatus(set []DealStatus, status DealStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

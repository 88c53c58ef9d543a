package handlers

// Metrics records intake and webhook outcomes. Implementations must be safe
// for concurrent use. A nil Metrics is valid and records nothing.
type Metrics interface {
	// ObservePassageIntake counts one intake attempt by channel and outcome.
	// status is "created", "duplicate" or "rejected".
	ObservePassageIntake(source, status string)

	// ObserveMatch counts one completed pair.
	ObserveMatch()

	// ObserveViolation counts one generated violation by kind.
	ObserveViolation(kind string)

	// ObserveAlertsResolved counts overstay alerts closed by an exit passage
	// or by hand.
	ObserveAlertsResolved(n int)

	// ObserveSMSWebhook counts one webhook delivery by outcome.
	// outcome is "accepted", "duplicate", "rejected" or "unauthorized".
	ObserveSMSWebhook(outcome string)
}

// observeIntakeResult pushes the store's intake outcome into the metrics
// sink. Shared by the HTTP intake and the SMS webhook.
func observeIntakeResult(m Metrics, source, status string, matched bool, violationKind string, resolvedAlerts int) {
	if m == nil {
		return
	}
	m.ObservePassageIntake(source, status)
	if matched {
		m.ObserveMatch()
	}
	if violationKind != "" {
		m.ObserveViolation(violationKind)
	}
	if resolvedAlerts > 0 {
		m.ObserveAlertsResolved(resolvedAlerts)
	}
}

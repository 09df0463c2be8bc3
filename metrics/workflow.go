package metrics

import "log"

// RecordWorkflowTransition records a deal status change made by the creative workflow
func RecordWorkflowTransition(fromStatus, toStatus string) {
	if !IsEnabled() {
		return
	}

	incCounter(`dealbot_workflow_transitions_total{from_status="` + fromStatus + `",to_status="` + toStatus + `"}`)
	log.Printf("[METRICS] Workflow transition: from=%s, to=%s", fromStatus, toStatus)
}

// RecordWorkflowAction records a workflow step taken by a participant
func RecordWorkflowAction(action, outcome string) {
	if !IsEnabled() {
		return
	}

	incCounter(`dealbot_workflow_actions_total{action="` + action + `",outcome="` + outcome + `"}`)
	log.Printf("[METRICS] Workflow action: action=%s, outcome=%s", action, outcome)
}

// RecordCommand records slash command usage
func RecordCommand(command, languageCode string) {
	if !IsEnabled() {
		return
	}

	incCounter(`dealbot_slash_commands_total{command="` + command + `",language_code="` + languageCode + `"}`)
	log.Printf("[METRICS] Slash command executed: command=%s, language=%s", command, languageCode)
}

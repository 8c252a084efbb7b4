package kioskRepository

const (
	queryCreateTurn = `
		INSERT INTO kiosk_turns (
			id, session_id, mode, screen, service, step,
			utterance, reply, escalated, audio_key,
			error_count, retry_count, created_at
		) VALUES (
			:id, :session_id, :mode, :screen, :service, :step,
			:utterance, :reply, :escalated, :audio_key,
			:error_count, :retry_count, :created_at
		)
	`

	queryGetTurnsBySessionID = `
		SELECT
			id, session_id, mode, screen, service, step,
			utterance, reply, escalated, audio_key,
			error_count, retry_count, created_at
		FROM kiosk_turns
		WHERE session_id = :session_id
		ORDER BY created_at ASC
		LIMIT :limit
	`

	queryCreateReception = `
		INSERT INTO kiosk_receptions (
			id, session_id, patient_name, phone, address,
			symptom, department, visit_date, visit_time, created_at
		) VALUES (
			:id, :session_id, :patient_name, :phone, :address,
			:symptom, :department, :visit_date, :visit_time, :created_at
		)
	`

	queryCreateEscalation = `
		INSERT INTO kiosk_escalations (
			id, session_id, reason, screen, service, step,
			status, created_at
		) VALUES (
			:id, :session_id, :reason, :screen, :service, :step,
			:status, :created_at
		)
	`

	queryGetEscalationByID = `
		SELECT
			id, session_id, reason, screen, service, step,
			status, resolved_by, created_at, resolved_at
		FROM kiosk_escalations
		WHERE id = :id
	`

	queryGetOpenEscalations = `
		SELECT
			id, session_id, reason, screen, service, step,
			status, resolved_by, created_at, resolved_at
		FROM kiosk_escalations
		WHERE status = 'open'
		ORDER BY created_at ASC
		LIMIT :limit
	`

	queryResolveEscalation = `
		UPDATE kiosk_escalations
		SET status = 'resolved', resolved_by = :resolved_by, resolved_at = :resolved_at
		WHERE id = :id AND status = 'open'
	`
)

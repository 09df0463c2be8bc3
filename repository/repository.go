package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"dealbot/objects"

	"github.com/lib/pq"
)

// Store is the durable state the relay and the creative workflow rely on
type Store interface {
	FindUser(userId int64) *objects.User
	GetDealByID(id int64) (*objects.Deal, error)
	ListUserDeals(userId int64, statuses []objects.DealStatus) ([]*objects.Deal, error)
	UpdateDealCreative(dealID int64, text string, media []objects.MediaRef) error
	RecordCreativeDecision(event *objects.DealEvent, rejectionReason *string) error
	CreateConversationMessage(message *objects.ConversationMessage) error
	GetDealEvents(dealID int64) ([]*objects.DealEvent, error)
}

type Repository struct {
	db *sql.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	log.Println("[REPOSITORY] Repository initialized")
	return &Repository{db: db}
}

// FindUser looks a participant up by Telegram id. Returns nil when the
// user is not registered.
func (repo *Repository) FindUser(userId int64) *objects.User {
	log.Printf("[REPOSITORY] Finding user with ID: %d", userId)
	user := &objects.User{}

	var username, firstName, lastName, languageCode sql.NullString
	err := repo.db.QueryRow(
		`SELECT "userId", "accountId", "username", "firstName", "lastName", "languageCode"
		FROM users
		WHERE "userId" = $1
		LIMIT 1`,
		userId,
	).Scan(&user.UserId, &user.AccountID, &username, &firstName, &lastName, &languageCode)

	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[REPOSITORY] User %d not found", userId)
		} else {
			log.Printf("[REPOSITORY] Error finding user %d: %v", userId, err)
		}
		return nil
	}

	user.Username = username.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.LanguageCode = languageCode.String

	log.Printf("[REPOSITORY] User %d found with language: %s", userId, user.LanguageCode)
	return user
}

const dealColumns = `d.id, adv."userId", pub."userId", d.status, d.creative_text, d.creative_media,
		d.rejection_reason, d.scheduled_time, d.created_at, d.updated_at`

const dealJoins = `FROM deals d
		JOIN users adv ON adv."accountId" = d.advertiser_account_id
		JOIN users pub ON pub."accountId" = d.publisher_account_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDeal(row rowScanner) (*objects.Deal, error) {
	deal := &objects.Deal{}
	var status string
	var creativeText, creativeMedia, rejectionReason sql.NullString
	var scheduledTime sql.NullTime

	err := row.Scan(&deal.ID, &deal.AdvertiserID, &deal.PublisherID, &status, &creativeText, &creativeMedia,
		&rejectionReason, &scheduledTime, &deal.CreatedAt, &deal.UpdatedAt)
	if err != nil {
		return nil, err
	}

	deal.Status = objects.DealStatus(status)
	deal.CreativeText = creativeText.String

	// Handle nullable fields
	if creativeMedia.Valid && creativeMedia.String != "" {
		if err := json.Unmarshal([]byte(creativeMedia.String), &deal.CreativeMedia); err != nil {
			return nil, fmt.Errorf("decode creative media of deal %d: %w", deal.ID, err)
		}
	}
	if rejectionReason.Valid {
		reason := rejectionReason.String
		deal.RejectionReason = &reason
	}
	if scheduledTime.Valid {
		deal.ScheduledTime = &scheduledTime.Time
	}

	return deal, nil
}

// GetDealByID retrieves a deal with both participants' Telegram ids.
// Returns nil, nil when the deal does not exist.
func (repo *Repository) GetDealByID(id int64) (*objects.Deal, error) {
	log.Printf("[REPOSITORY] Getting deal by ID: %d", id)

	deal, err := scanDeal(repo.db.QueryRow(
		`SELECT `+dealColumns+` `+dealJoins+`
		WHERE d.id = $1`,
		id,
	))

	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[REPOSITORY] Deal %d not found", id)
			return nil, nil
		}
		log.Printf("[REPOSITORY] Error getting deal %d: %v", id, err)
		return nil, err
	}

	log.Printf("[REPOSITORY] Deal %d found with status %s", id, deal.Status)
	return deal, nil
}

// ListUserDeals returns the deals where the user is a party and the status is one of statuses
func (repo *Repository) ListUserDeals(userId int64, statuses []objects.DealStatus) ([]*objects.Deal, error) {
	log.Printf("[REPOSITORY] Listing deals for user %d (%d statuses)", userId, len(statuses))

	statusStrings := make([]string, len(statuses))
	for i, status := range statuses {
		statusStrings[i] = string(status)
	}

	rows, err := repo.db.Query(
		`SELECT `+dealColumns+` `+dealJoins+`
		WHERE (adv."userId" = $1 OR pub."userId" = $1) AND d.status = ANY($2)
		ORDER BY d.updated_at DESC`,
		userId, pq.Array(statusStrings),
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error listing deals: %v", err)
		return nil, err
	}
	defer rows.Close()

	var deals []*objects.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			log.Printf("[REPOSITORY] Error scanning deal row: %v", err)
			continue
		}
		deals = append(deals, deal)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Printf("[REPOSITORY] Found %d deals for user %d", len(deals), userId)
	return deals, nil
}

// UpdateDealCreative commits creative text and media. The update only applies
// while the deal is in a creative-eligible status.
func (repo *Repository) UpdateDealCreative(dealID int64, text string, media []objects.MediaRef) error {
	log.Printf("[REPOSITORY] Updating creative of deal %d (%d media)", dealID, len(media))

	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return err
	}
	if media == nil {
		mediaJSON = []byte("[]")
	}

	statuses := make([]string, 0, 3)
	for _, status := range objects.CreativeEligibleStatuses() {
		statuses = append(statuses, string(status))
	}

	result, err := repo.db.Exec(
		`UPDATE deals
		SET creative_text = $2, creative_media = $3::jsonb, updated_at = $4
		WHERE id = $1 AND status = ANY($5)`,
		dealID, text, string(mediaJSON), time.Now().UTC(), pq.Array(statuses),
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error updating creative of deal %d: %v", dealID, err)
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		log.Printf("[REPOSITORY] Deal %d is missing or not in a creative status", dealID)
		return fmt.Errorf("update creative of deal %d: %w", dealID, objects.ErrInvalidDealState)
	}

	log.Printf("[REPOSITORY] Creative of deal %d updated successfully", dealID)
	return nil
}

// RecordCreativeDecision applies a reviewer decision in one transaction:
// the status moves from event.FromStatus to event.ToStatus, the rejection
// reason is stored when given, and the event is appended.
func (repo *Repository) RecordCreativeDecision(event *objects.DealEvent, rejectionReason *string) error {
	log.Printf("[REPOSITORY] Recording %s for deal %d: %s -> %s",
		event.EventType, event.DealID, event.FromStatus, event.ToStatus)

	tx, err := repo.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var reason sql.NullString
	if rejectionReason != nil {
		reason = sql.NullString{String: *rejectionReason, Valid: true}
	}

	result, err := tx.Exec(
		`UPDATE deals
		SET status = $2,
		    rejection_reason = CASE WHEN $3::text IS NULL THEN rejection_reason ELSE $3::text END,
		    updated_at = $4
		WHERE id = $1 AND status = $5`,
		event.DealID, string(event.ToStatus), reason, time.Now().UTC(), string(event.FromStatus),
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error updating deal %d status: %v", event.DealID, err)
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		log.Printf("[REPOSITORY] Deal %d status changed concurrently, expected %s", event.DealID, event.FromStatus)
		return fmt.Errorf("deal %d is no longer %s: %w", event.DealID, event.FromStatus, objects.ErrInvalidDealState)
	}

	var payload sql.NullString
	if len(event.Payload) > 0 {
		payload = sql.NullString{String: string(event.Payload), Valid: true}
	}

	err = tx.QueryRow(
		`INSERT INTO deal_events (event_id, deal_id, from_status, to_status, actor_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
		RETURNING id`,
		event.EventID, event.DealID, string(event.FromStatus), string(event.ToStatus), event.ActorID,
		event.EventType, payload, event.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		log.Printf("[REPOSITORY] Error appending deal event: %v", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[REPOSITORY] Error committing decision for deal %d: %v", event.DealID, err)
		return err
	}

	log.Printf("[REPOSITORY] Deal event %d (%s) recorded for deal %d", event.ID, event.EventType, event.DealID)
	return nil
}

// GetDealEvents returns the event history of a deal, oldest first
func (repo *Repository) GetDealEvents(dealID int64) ([]*objects.DealEvent, error) {
	log.Printf("[REPOSITORY] Getting events for deal: %d", dealID)

	rows, err := repo.db.Query(
		`SELECT id, event_id, deal_id, from_status, to_status, actor_id, event_type, payload, created_at
		FROM deal_events
		WHERE deal_id = $1
		ORDER BY id ASC`,
		dealID,
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error getting deal events: %v", err)
		return nil, err
	}
	defer rows.Close()

	var events []*objects.DealEvent
	for rows.Next() {
		event := &objects.DealEvent{}
		var from, to string
		var actorID sql.NullInt64
		var payload sql.NullString

		err := rows.Scan(&event.ID, &event.EventID, &event.DealID, &from, &to, &actorID,
			&event.EventType, &payload, &event.CreatedAt)
		if err != nil {
			log.Printf("[REPOSITORY] Error scanning deal event: %v", err)
			continue
		}

		event.FromStatus = objects.DealStatus(from)
		event.ToStatus = objects.DealStatus(to)
		if actorID.Valid {
			actor := actorID.Int64
			event.ActorID = &actor
		}
		if payload.Valid {
			event.Payload = json.RawMessage(payload.String)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Printf("[REPOSITORY] Found %d events for deal %d", len(events), dealID)
	return events, nil
}

// CreateConversationMessage appends one relayed exchange to the conversation log
func (repo *Repository) CreateConversationMessage(message *objects.ConversationMessage) error {
	log.Printf("[REPOSITORY] Logging relayed message for deal %d: %d -> %d",
		message.DealID, message.SenderID, message.ReceiverID)

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	var forwarded sql.NullInt64
	if message.ForwardedMessageID != nil {
		forwarded = sql.NullInt64{Int64: int64(*message.ForwardedMessageID), Valid: true}
	}

	err := repo.db.QueryRow(
		`INSERT INTO conversation_messages (deal_id, sender_id, receiver_id, original_message_id, forwarded_message_id, text, has_media, content_kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		message.DealID, message.SenderID, message.ReceiverID, message.OriginalMessageID, forwarded,
		message.Text, message.HasMedia, message.ContentKind, message.CreatedAt,
	).Scan(&message.ID)

	if err != nil {
		log.Printf("[REPOSITORY] Error logging relayed message: %v", err)
		return err
	}

	log.Printf("[REPOSITORY] Conversation message %d created", message.ID)
	return nil
}

package audit

import (
	"encoding/json"
	"log"
	"time"
)

type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	EventType   string    `json:"event_type"`
	ReferenceID string    `json:"reference_id"`
	UserID      int       `json:"user_id"`
	GroupID     int       `json:"group_id,omitempty"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	Details     any       `json:"details"`
}

type Logger struct{}

func NewLogger() *Logger {
	return &Logger{}
}

// LogMovement records a balance-affecting operation after it commits.
func (a *Logger) LogMovement(referenceID string, userID int, eventType string, amount int64, status string) {
	a.log(Event{
		Timestamp:   time.Now(),
		EventType:   eventType,
		ReferenceID: referenceID,
		UserID:      userID,
		Amount:      amount,
		Status:      status,
	})
}

// LogGroupMovement records a group-scoped operation.
func (a *Logger) LogGroupMovement(referenceID string, userID, groupID int, eventType string, amount int64, status string) {
	a.log(Event{
		Timestamp:   time.Now(),
		EventType:   eventType,
		ReferenceID: referenceID,
		UserID:      userID,
		GroupID:     groupID,
		Amount:      amount,
		Status:      status,
	})
}

func (a *Logger) LogError(referenceID string, userID int, err error) {
	a.log(Event{
		Timestamp:   time.Now(),
		EventType:   "ERROR",
		ReferenceID: referenceID,
		UserID:      userID,
		Status:      "FAILED",
		Details:     map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}

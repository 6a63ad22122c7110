package websocket

import (
	"encoding/json"
	"time"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

type MessageType string

const (
	MessageTypeDataset      MessageType = "dataset"
	MessageTypeForecast     MessageType = "forecast"
	MessageTypeComparison   MessageType = "comparison"
	MessageTypeCleared      MessageType = "cleared"
	MessageTypeError        MessageType = "error"
	MessageTypeSubscription MessageType = "subscription_update"
)

// OutgoingMessage is the envelope every pushed event is sent in.
type OutgoingMessage struct {
	Type      MessageType          `json:"type"`
	DatasetID string               `json:"dataset_id,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
	Severity  models.EventSeverity `json:"severity,omitempty"`
	Message   string               `json:"message,omitempty"`
	TraceID   string               `json:"trace_id,omitempty"`
	Data      interface{}          `json:"data,omitempty"`
}

type SubscriptionUpdate struct {
	Type      MessageType `json:"type"`
	Action    string      `json:"action"`
	DatasetID string      `json:"dataset_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func (m *OutgoingMessage) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromEvent returns nil for event types that are not pushed to clients.
func MessageFromEvent(event *models.Event) *OutgoingMessage {
	msgType := mapEventType(event.Type)
	if msgType == "" {
		return nil
	}
	return &OutgoingMessage{
		Type:      msgType,
		DatasetID: event.DatasetID,
		Timestamp: event.Timestamp,
		Severity:  event.Severity,
		Message:   event.Message,
		TraceID:   event.TraceID,
		Data:      event.Data,
	}
}

func mapEventType(eventType models.EventType) MessageType {
	switch eventType {
	case models.EventTypeDatasetUploaded:
		return MessageTypeDataset
	case models.EventTypeForecastCompleted:
		return MessageTypeForecast
	case models.EventTypeComparisonCompleted:
		return MessageTypeComparison
	case models.EventTypeDataCleared:
		return MessageTypeCleared
	case models.EventTypeError:
		return MessageTypeError
	default:
		return ""
	}
}

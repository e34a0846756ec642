package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"travelmatch/internal/ws"
)

// WSNotifier pushes notifications over the websocket hub and records the
// email payload for the mail pipeline. Delivery is best-effort on both
// channels.
type WSNotifier struct {
	hub *ws.Hub
	log *logrus.Logger
}

// NewWSNotifier creates a new WSNotifier.
func NewWSNotifier(hub *ws.Hub, log *logrus.Logger) *WSNotifier {
	return &WSNotifier{hub: hub, log: log}
}

// Notify pushes the message to the host's personal room and logs the email
// payload. Hosts without an open connection receive the email only.
func (n *WSNotifier) Notify(ctx context.Context, hostID, email, eventType, title, message string, metadata map[string]string) error {
	n.hub.SendToHost(hostID, ws.Message{
		Type:  eventType,
		Title: title,
		Body:  message,
		Data:  metadata,
	})

	n.log.WithFields(logrus.Fields{
		"host_id": hostID,
		"email":   email,
		"event":   eventType,
		"title":   title,
	}).Info("notification dispatched")

	return nil
}

// Ensure WSNotifier implements Notifier.
var _ Notifier = (*WSNotifier)(nil)

// Package notify pushes short alert messages to the realtime relay the
// frontend subscribes to. Delivery is best effort.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/amankv/dime-backend/pkg/logger"
)

type Notifier struct {
	httpClient *http.Client
	url        string
}

func New(url string) *Notifier {
	return &Notifier{
		// Short timeout: an alert is never worth stalling a sync for.
		httpClient: &http.Client{Timeout: time.Second},
		url:        url,
	}
}

type message struct {
	Message string `json:"message"`
}

// Send posts a message to the relay. Failures are logged and swallowed.
func (n *Notifier) Send(ctx context.Context, text string) {
	if n.url == "" {
		return
	}

	payload, err := json.Marshal(message{Message: text})
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url+"/message", bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		logger.FromContext(ctx).Warn("notification delivery failed", "error", err)
		return
	}
	resp.Body.Close()
}

// TransactionAlert announces a freshly ingested transaction.
func (n *Notifier) TransactionAlert(ctx context.Context, merchant string, amount float64) {
	n.Send(ctx, fmt.Sprintf("Knot Alert: Transaction at %s for $%.2f.", merchant, amount))
}

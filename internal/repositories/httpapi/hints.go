package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

type HintAPI struct {
	client *Client
}

func NewHintAPI(client *Client) *HintAPI {
	return &HintAPI{client: client}
}

// SpendForHint asks the point economy to pay for one hint. A 4xx answer with a
// message is a rejection and comes back as Success false.
func (a *HintAPI) SpendForHint(ctx context.Context) (*models.HintSpend, error) {
	const op = "spend_hint"
	raw, err := a.client.doJSON(ctx, op, http.MethodPost, "/hints/spend", map[string]string{})
	if err != nil {
		var oe *OperationError
		if errors.As(err, &oe) && oe.ClientError() && oe.Message != "" {
			return &models.HintSpend{Success: false, Message: oe.Message}, nil
		}
		return nil, err
	}

	var spend models.HintSpend
	if err := decode(op, raw, &spend); err != nil {
		return nil, err
	}
	return &spend, nil
}

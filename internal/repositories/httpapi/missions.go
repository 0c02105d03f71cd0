package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

type MissionAPI struct {
	client *Client
}

func NewMissionAPI(client *Client) *MissionAPI {
	return &MissionAPI{client: client}
}

func (a *MissionAPI) GetMission(ctx context.Context, missionID string) (*models.Mission, error) {
	const op = "get_mission"
	raw, err := a.client.doJSON(ctx, op, http.MethodGet, "/api/missions/"+url.PathEscape(missionID), nil)
	if err != nil {
		return nil, err
	}

	var mission models.Mission
	if err := decode(op, raw, &mission); err != nil {
		return nil, err
	}
	if mission.ID == "" {
		mission.ID = missionID
	}
	return &mission, nil
}

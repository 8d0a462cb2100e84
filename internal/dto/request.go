package dto

import (
	"encoding/json"

	"github.com/Ross1116/sitespace-app-sub000/internal/models"
)

type RescheduleRequest struct {
	AssetID string  `json:"asset_id"`
	DeltaPx float64 `json:"delta_px"`
}

// DraftRequest accepts creation-dialog output, which is either a single
// partial booking object or an array of them (multi-asset creation produces
// one per asset).
type DraftRequest struct {
	Drafts []models.RawBooking
}

func (r *DraftRequest) UnmarshalJSON(data []byte) error {
	var many []models.RawBooking
	if err := json.Unmarshal(data, &many); err == nil {
		r.Drafts = many
		return nil
	}
	var one models.RawBooking
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	r.Drafts = []models.RawBooking{one}
	return nil
}

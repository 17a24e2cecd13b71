package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/referloop/referral-api/api"
	"github.com/referloop/referral-api/config"
	"github.com/referloop/referral-api/databases"
	"github.com/referloop/referral-api/models"
)

// Business exported for testing purposes
type Business struct {
	CDB databases.CampaignDatabase
	LDB databases.ReferralLinkDatabase
	RDB databases.RewardDatabase
}

type campaignStats struct {
	models.Campaign
	Links  int64 `json:"links"`
	Clicks int64 `json:"clicks"`
}

type dashboardResponse struct {
	Campaigns        []campaignStats `json:"campaigns"`
	TotalCampaigns   int64           `json:"totalCampaigns"`
	ActiveCampaigns  int64           `json:"activeCampaigns"`
	TotalLinks       int64           `json:"totalLinks"`
	TotalClicks      int64           `json:"totalClicks"`
	TotalConversions int64           `json:"totalConversions"`
	TotalRedemptions int64           `json:"totalRedemptions"`
	RewardsIssued    int64           `json:"rewardsIssued"`
}

// DashboardHandler aggregates campaign, link, and reward activity for the
// session business. Conversion and redemption totals come off the campaign
// counters; click totals come off the links.
func (b Business) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	campaigns, err := b.CDB.Find(ctx, bson.M{"businessId": businessID})
	if err != nil {
		config.ErrorStatus("failed to get campaigns", http.StatusInternalServerError, w, err)
		return
	}

	resp := dashboardResponse{Campaigns: []campaignStats{}}
	resp.TotalCampaigns = int64(len(campaigns))

	if len(campaigns) > 0 {
		ids := make([]primitive.ObjectID, 0, len(campaigns))
		for _, c := range campaigns {
			ids = append(ids, c.ID)
		}
		links, err := b.LDB.Find(ctx, bson.M{"campaignId": bson.M{"$in": ids}})
		if err != nil {
			config.ErrorStatus("failed to get referral links", http.StatusInternalServerError, w, err)
			return
		}

		linkCount := make(map[primitive.ObjectID]int64, len(campaigns))
		clickCount := make(map[primitive.ObjectID]int64, len(campaigns))
		for _, l := range links {
			linkCount[l.CampaignID]++
			clickCount[l.CampaignID] += l.Clicks
		}

		for _, c := range campaigns {
			if c.IsActive {
				resp.ActiveCampaigns++
			}
			resp.TotalLinks += linkCount[c.ID]
			resp.TotalClicks += clickCount[c.ID]
			resp.TotalConversions += c.Conversions
			resp.TotalRedemptions += c.Redemptions
			resp.Campaigns = append(resp.Campaigns, campaignStats{
				Campaign: c,
				Links:    linkCount[c.ID],
				Clicks:   clickCount[c.ID],
			})
		}
	}

	rewardsIssued, err := b.RDB.CountDocuments(ctx, bson.M{"businessId": businessID})
	if err != nil {
		config.ErrorStatus("failed to count rewards", http.StatusInternalServerError, w, err)
		return
	}
	resp.RewardsIssued = rewardsIssued

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

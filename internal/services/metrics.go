package services

import (
	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/shopspring/decimal"
)

// ApprovalCounts - количество предложений по решению клиента.
type ApprovalCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

// OfferStats - сводка по набору предложений.
type OfferStats struct {
	Counts        ApprovalCounts  `json:"counts"`
	SuccessRate   float64         `json:"successRate"`
	ApprovedValue decimal.Decimal `json:"approvedValue"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
}

// CountByApprovalStatus считает предложения по client_approval_status.
// Неизвестный статус считается нерассмотренным, поэтому сумма всегда равна len(offers).
func CountByApprovalStatus(offers []models.Offer) ApprovalCounts {
	counts := ApprovalCounts{Total: len(offers)}
	for _, offer := range offers {
		switch offer.ClientApprovalStatus {
		case models.ApprovalApproved:
			counts.Approved++
		case models.ApprovalRejected:
			counts.Rejected++
		default:
			counts.Pending++
		}
	}
	return counts
}

// SuccessRate - доля одобренных предложений, 0 для пустого набора.
func SuccessRate(offers []models.Offer) float64 {
	counts := CountByApprovalStatus(offers)
	if counts.Total == 0 {
		return 0
	}
	return float64(counts.Approved) / float64(counts.Total)
}

// ApprovedValue - сумма цен одобренных предложений.
func ApprovedValue(offers []models.Offer) decimal.Decimal {
	sum := decimal.Zero
	for _, offer := range offers {
		if offer.ClientApprovalStatus == models.ApprovalApproved {
			sum = sum.Add(offer.Price)
		}
	}
	return sum
}

// AveragePrice - средняя цена предложения, округленная до копеек.
func AveragePrice(offers []models.Offer) decimal.Decimal {
	if len(offers) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, offer := range offers {
		sum = sum.Add(offer.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(offers)))).Round(2)
}

// ComputeStats собирает сводку заново при каждом вызове.
func ComputeStats(offers []models.Offer) OfferStats {
	return OfferStats{
		Counts:        CountByApprovalStatus(offers),
		SuccessRate:   SuccessRate(offers),
		ApprovedValue: ApprovedValue(offers),
		AveragePrice:  AveragePrice(offers),
	}
}

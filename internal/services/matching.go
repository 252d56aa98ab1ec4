package services

import (
	"sort"

	"github.com/senyabanana/marketplace-service/internal/models"
)

// NewestFirst упорядочивает заявки от новых к старым.
func NewestFirst(a, b models.Request) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

// EligibleRequests отбирает заявки, по которым поставщик может подать предложение:
// одобренные администратором, не выполненные и без предложения этого поставщика.
// Предложения других поставщиков в existing не учитываются. По умолчанию
// результат упорядочен NewestFirst, less задает другой порядок. Входной срез не меняется.
func EligibleRequests(all []models.Request, vendorId string, existing []models.Offer, less ...func(a, b models.Request) bool) []models.Request {
	offered := make(map[string]struct{}, len(existing))
	for _, offer := range existing {
		if offer.VendorID == vendorId {
			offered[offer.RequestID] = struct{}{}
		}
	}

	eligible := make([]models.Request, 0, len(all))
	for i := range all {
		if !all[i].Biddable() {
			continue
		}
		if _, ok := offered[all[i].ID]; ok {
			continue
		}
		eligible = append(eligible, all[i])
	}

	order := NewestFirst
	if len(less) > 0 && less[0] != nil {
		order = less[0]
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return order(eligible[i], eligible[j])
	})
	return eligible
}

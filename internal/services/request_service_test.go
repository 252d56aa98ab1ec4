package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/shopspring/decimal"
)

var admin = models.Actor{ID: "A1", Role: models.AdminRole}

func TestCreateRequest(t *testing.T) {
	f := newFixture()

	r, err := f.requests.CreateRequest(context.Background(), "C1", models.RequestRequest{
		Title:       " Chairs ",
		Description: "Office chairs",
		Category:    "furniture",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if r.Title != "Chairs" || r.Urgency != models.UrgencyMedium || r.Currency != "USD" {
		t.Fatalf("defaults not applied: %+v", r)
	}
	if r.Status != models.OpenRequest || r.AdminApprovalStatus != models.AdminPending {
		t.Fatalf("new request must be open and awaiting review: %+v", r)
	}
	if r.Biddable() {
		t.Fatalf("request awaiting review must not be biddable")
	}
}

func TestCreateRequest_Validation(t *testing.T) {
	low, high := decimal.NewFromInt(500), decimal.NewFromInt(100)
	negative := decimal.NewFromInt(-1)
	fraction := decimal.RequireFromString("0.005")
	huge := decimal.New(1, 13)
	longLocation := strings.Repeat("a", 201)

	tests := []struct {
		name  string
		req   models.RequestRequest
		field string
	}{
		{"missing title", models.RequestRequest{Description: "d", Category: "c"}, "title"},
		{"bad urgency", models.RequestRequest{Title: "t", Description: "d", Category: "c", Urgency: "asap"}, "urgency"},
		{"bad currency", models.RequestRequest{Title: "t", Description: "d", Category: "c", Currency: "EURO"}, "currency"},
		{"negative budget", models.RequestRequest{Title: "t", Description: "d", Category: "c", BudgetMin: &negative}, "budgetMin"},
		{"inverted budget", models.RequestRequest{Title: "t", Description: "d", Category: "c", BudgetMin: &low, BudgetMax: &high}, "budgetMin"},
		{"budget below a cent", models.RequestRequest{Title: "t", Description: "d", Category: "c", BudgetMin: &fraction}, "budgetMin"},
		{"budget out of range", models.RequestRequest{Title: "t", Description: "d", Category: "c", BudgetMax: &huge}, "budgetMax"},
		{"long title", models.RequestRequest{Title: strings.Repeat("a", 201), Description: "d", Category: "c"}, "title"},
		{"long description", models.RequestRequest{Title: "t", Description: strings.Repeat("a", 4001), Category: "c"}, "description"},
		{"long category", models.RequestRequest{Title: "t", Description: "d", Category: strings.Repeat("a", 101)}, "category"},
		{"long location", models.RequestRequest{Title: "t", Description: "d", Category: "c", Location: &longLocation}, "location"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.requests.CreateRequest(context.Background(), "C1", tt.req)
			var verr *models.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected ValidationError on %q, got %v", tt.field, err)
			}
		})
	}
}

func TestReviewRequest(t *testing.T) {
	f := newFixture()
	f.addRequest("R1", "C1", models.AdminPending, models.OpenRequest, baseTime)
	ctx := context.Background()

	if _, err := f.requests.ReviewRequest(ctx, models.Actor{ID: "C1", Role: models.ClientRole}, "R1", models.ReviewRequest{Decision: models.AdminApproved}); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("non-admin: expected ErrForbidden, got %v", err)
	}

	r, err := f.requests.ReviewRequest(ctx, admin, "R1", models.ReviewRequest{Decision: models.AdminApproved})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if !r.Biddable() {
		t.Fatalf("approved open request must be biddable")
	}
	if got := f.dispatcher.types(); len(got) != 1 || got[0] != "C1:"+models.RequestApprovedNotification {
		t.Fatalf("expected request_approved for C1, got %v", got)
	}

	_, err = f.requests.ReviewRequest(ctx, admin, "R1", models.ReviewRequest{Decision: models.AdminRejected})
	if !errors.Is(err, models.ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestReviewRequest_InvalidDecision(t *testing.T) {
	f := newFixture()
	f.addRequest("R1", "C1", models.AdminPending, models.OpenRequest, baseTime)

	_, err := f.requests.ReviewRequest(context.Background(), admin, "R1", models.ReviewRequest{Decision: models.AdminPending})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCancelRequest(t *testing.T) {
	f := newFixture()
	f.addRequest("R1", "C1", models.AdminApproved, models.OpenRequest, baseTime)
	ctx := context.Background()

	if _, err := f.requests.CancelRequest(ctx, "C2", "R1"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("other client: expected ErrForbidden, got %v", err)
	}
	r, err := f.requests.CancelRequest(ctx, "C1", "R1")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if r.Status != models.CancelledRequest {
		t.Fatalf("expected cancelled, got %s", r.Status)
	}
	if _, err = f.requests.CancelRequest(ctx, "C1", "R1"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("second cancel: expected ErrForbidden, got %v", err)
	}
}

func TestGetRequest_Visibility(t *testing.T) {
	f := newFixture()
	f.addRequest("R1", "C1", models.AdminPending, models.OpenRequest, baseTime)
	f.addRequest("R2", "C1", models.AdminApproved, models.OpenRequest, baseTime)
	ctx := context.Background()
	vendor := models.Actor{ID: "V1", Role: models.VendorRole}

	if _, err := f.requests.GetRequest(ctx, vendor, "R1"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("vendor on unreviewed request: expected ErrForbidden, got %v", err)
	}
	if _, err := f.requests.GetRequest(ctx, vendor, "R2"); err != nil {
		t.Fatalf("vendor on approved request: %v", err)
	}
	if _, err := f.requests.GetRequest(ctx, models.Actor{ID: "C1", Role: models.ClientRole}, "R1"); err != nil {
		t.Fatalf("owner: %v", err)
	}
	if _, err := f.requests.GetRequest(ctx, admin, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEligibleForVendor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addRequest("R1", "C1", models.AdminApproved, models.OpenRequest, baseTime.Add(-2*time.Hour))
	f.addRequest("R2", "C1", models.AdminApproved, models.OpenRequest, baseTime.Add(-time.Hour))
	f.addRequest("R3", "C1", models.AdminPending, models.OpenRequest, baseTime)
	f.addRequest("R4", "C1", models.AdminApproved, models.CompletedRequest, baseTime)
	f.addRequest("R5", "V1", models.AdminApproved, models.OpenRequest, baseTime)

	if _, err := f.offers.SubmitOffer(ctx, "V1", validOffer("R2")); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	got, err := f.requests.EligibleForVendor(ctx, "V1")
	if err != nil {
		t.Fatalf("eligible failed: %v", err)
	}
	if !equalIDs(ids(got), []string{"R1"}) {
		t.Fatalf("expected [R1], got %v", ids(got))
	}
}

func TestListPendingReview(t *testing.T) {
	f := newFixture()
	f.addRequest("R1", "C1", models.AdminPending, models.OpenRequest, baseTime)
	f.addRequest("R2", "C1", models.AdminApproved, models.OpenRequest, baseTime)
	ctx := context.Background()

	if _, err := f.requests.ListPendingReview(ctx, models.Actor{ID: "C1", Role: models.ClientRole}, "", ""); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	got, err := f.requests.ListPendingReview(ctx, admin, "", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !equalIDs(ids(got), []string{"R1"}) {
		t.Fatalf("expected [R1], got %v", ids(got))
	}
	if _, err = f.requests.ListPendingReview(ctx, admin, "abc", ""); err == nil {
		t.Fatalf("expected error for bad limit")
	}
}

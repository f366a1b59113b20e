package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Desla-ai/Doeum/internal/database"
	"github.com/Desla-ai/Doeum/internal/metrics"
	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/payment"
	"github.com/Desla-ai/Doeum/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	repo      *repository.Repository
	metrics   *metrics.Metrics
	requests  *RequestService
	proposals *ProposalService
	orders    *OrderService
	payouts   *PayoutService
	chat      *ChatService
	addresses *AddressService
	profiles  *ProfileService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A single connection keeps one private in-memory database per test.
	db, err := gorm.Open(sqlite.Open(":memory:"), database.Config())
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	m := metrics.New()

	payouts, err := NewPayoutService(payment.NewStubGateway(), repo, "4")
	if err != nil {
		t.Fatalf("NewPayoutService failed: %v", err)
	}

	return &testEnv{
		db:        db,
		repo:      repo,
		metrics:   m,
		requests:  NewRequestService(repo, m),
		proposals: NewProposalService(repo, m),
		orders:    NewOrderService(repo, payouts, m),
		payouts:   payouts,
		chat:      NewChatService(repo, m),
		addresses: NewAddressService(repo),
		profiles:  NewProfileService(repo),
	}
}

func (e *testEnv) addAddress(t *testing.T, userID uuid.UUID) *models.Address {
	t.Helper()

	address, err := e.addresses.AddAddress(context.Background(), userID, models.AddressInput{
		RegionSigungu: "강남구",
		RegionDong:    "역삼동",
		AddressLine:   "테헤란로 1",
	})
	if err != nil {
		t.Fatalf("AddAddress failed: %v", err)
	}
	return address
}

func (e *testEnv) postRequest(t *testing.T, customerID uuid.UUID, price int64) *models.Request {
	t.Helper()

	req, err := e.requests.CreateRequest(context.Background(), customerID, models.NewRequestInput{
		Category:      "cleaning",
		Description:   "거실과 주방 청소 부탁드려요",
		Price:         price,
		RegionSigungu: "강남구",
		RegionDong:    "역삼동",
		AddressID:     e.addAddress(t, customerID).ID.String(),
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	return req
}

func (e *testEnv) propose(t *testing.T, helperID, requestID uuid.UUID, price *int64) *models.Proposal {
	t.Helper()

	p, err := e.proposals.SubmitProposal(context.Background(), helperID, requestID, models.SubmitProposalInput{
		Message:       "제가 깔끔하게 해드릴게요",
		ProposedPrice: price,
	})
	if err != nil {
		t.Fatalf("SubmitProposal failed: %v", err)
	}
	// keep created_at strictly increasing for ordering assertions
	time.Sleep(2 * time.Millisecond)
	return p
}

// newOrder walks a fresh request through proposal and selection
func (e *testEnv) newOrder(t *testing.T, amount int64) (*models.Order, uuid.UUID, uuid.UUID) {
	t.Helper()

	customer, helper := uuid.New(), uuid.New()
	req := e.postRequest(t, customer, amount)
	p := e.propose(t, helper, req.ID, nil)

	order, err := e.proposals.SelectProposal(context.Background(), customer, req.ID, p.ID)
	if err != nil {
		t.Fatalf("SelectProposal failed: %v", err)
	}
	return order, customer, helper
}

func (e *testEnv) advance(t *testing.T, order *models.Order, actor uuid.UUID, statuses ...models.OrderStatus) {
	t.Helper()

	for _, s := range statuses {
		if _, err := e.orders.Transition(context.Background(), actor, order.ID, models.TransitionInput{ToStatus: string(s)}); err != nil {
			t.Fatalf("Transition to %s failed: %v", s, err)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func expectKind(t *testing.T, err error, kind error) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

// counterValue sums every series of a counter family
func counterValue(t *testing.T, env *testEnv, name string) float64 {
	t.Helper()

	families, err := env.metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func int64Ptr(v int64) *int64 {
	return &v
}

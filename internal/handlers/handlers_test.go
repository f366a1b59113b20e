package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Desla-ai/Doeum/internal/auth"
	"github.com/Desla-ai/Doeum/internal/database"
	"github.com/Desla-ai/Doeum/internal/metrics"
	"github.com/Desla-ai/Doeum/internal/payment"
	"github.com/Desla-ai/Doeum/internal/repository"
	"github.com/Desla-ai/Doeum/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (*apiClient, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.InitJWT("handler-test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), database.Config())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	repo := repository.NewRepository(db)
	m := metrics.New()
	payouts, err := services.NewPayoutService(payment.NewStubGateway(), repo, "4")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/health", HealthCheck(db))
	RegisterRoutes(r, Handlers{
		Requests: NewRequestHandler(services.NewRequestService(repo, m), services.NewProposalService(repo, m)),
		Orders:   NewOrderHandler(services.NewOrderService(repo, payouts, m)),
		Chat:     NewChatHandler(services.NewChatService(repo, m)),
		Users:    NewUserHandler(services.NewProfileService(repo), services.NewAddressService(repo)),
	}, auth.AuthMiddleware("sb-access-token"))

	return &apiClient{t: t, router: r}, db
}

func (a *apiClient) do(user uuid.UUID, method, path string, body interface{}) (int, envelope) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		token, err := auth.GenerateToken(user, "", time.Hour)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	api, _ := newTestRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/me"},
		{http.MethodPost, "/api/requests"},
		{http.MethodPatch, "/api/orders/" + uuid.NewString() + "/status"},
		{http.MethodGet, "/api/chat/threads/" + uuid.NewString() + "/messages"},
	} {
		code, env := api.do(uuid.Nil, route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, code, route.path)
		require.NotNil(t, env.Error)
		assert.Equal(t, "Unauthorized", env.Error.Message)
	}
}

func TestHealth(t *testing.T) {
	api, _ := newTestRouter(t)
	code, _ := api.do(uuid.Nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestMarketplaceFlow(t *testing.T) {
	api, _ := newTestRouter(t)
	customer, helper := uuid.New(), uuid.New()

	code, env := api.do(customer, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, code)
	var me struct{ ID uuid.UUID }
	decode(t, env, &me)
	assert.Equal(t, customer, me.ID)

	code, env = api.do(customer, http.MethodPost, "/api/addresses", map[string]interface{}{
		"region_sigungu": "강남구", "region_dong": "역삼동", "address_line": "테헤란로 1",
	})
	require.Equal(t, http.StatusCreated, code)
	var address struct{ ID uuid.UUID }
	decode(t, env, &address)

	code, env = api.do(customer, http.MethodPost, "/api/requests", map[string]interface{}{
		"category": "cleaning", "description": "대청소", "price": 50000,
		"region_sigungu": "강남구", "region_dong": "역삼동", "address_id": address.ID,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var req struct {
		ID     uuid.UUID
		Status string
	}
	decode(t, env, &req)
	assert.Equal(t, "posted", req.Status)

	code, env = api.do(helper, http.MethodGet, "/api/requests/feed?sigungu="+url.QueryEscape("강남구"), nil)
	require.Equal(t, http.StatusOK, code)
	var feed []struct{ ID uuid.UUID }
	decode(t, env, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, req.ID, feed[0].ID)

	code, env = api.do(customer, http.MethodPost, fmt.Sprintf("/api/requests/%s/proposals", req.ID), map[string]interface{}{
		"message": "제가 할게요 ^^",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(helper, http.MethodPost, fmt.Sprintf("/api/requests/%s/proposals", req.ID), map[string]interface{}{
		"message": "깔끔하게 청소해 드립니다", "proposed_price": 48000,
	})
	require.Equal(t, http.StatusCreated, code)
	var proposal struct{ ID uuid.UUID }
	decode(t, env, &proposal)

	code, _ = api.do(helper, http.MethodGet, "/api/requests/"+req.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(customer, http.MethodPost, fmt.Sprintf("/api/requests/%s/select-proposal", req.ID), map[string]interface{}{
		"proposal_id": proposal.ID,
	})
	require.Equal(t, http.StatusOK, code)
	var order struct {
		ID     uuid.UUID
		Amount int64
		Status string
	}
	decode(t, env, &order)
	assert.Equal(t, int64(48000), order.Amount)
	assert.Equal(t, "accepted", order.Status)

	code, env = api.do(customer, http.MethodPost, fmt.Sprintf("/api/requests/%s/select-proposal", req.ID), map[string]interface{}{
		"proposal_id": proposal.ID,
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env = api.do(customer, http.MethodGet, fmt.Sprintf("/api/orders/%s/checkout", order.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var quote struct {
		PlatformFee int64 `json:"platform_fee"`
		Total       int64
	}
	decode(t, env, &quote)
	assert.Equal(t, int64(1920), quote.PlatformFee)
	assert.Equal(t, int64(49920), quote.Total)

	statusPath := fmt.Sprintf("/api/orders/%s/status", order.ID)

	code, env = api.do(helper, http.MethodPatch, statusPath, map[string]interface{}{"to_status": "done_by_helper"})
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "accepted")

	code, _ = api.do(uuid.New(), http.MethodPatch, statusPath, map[string]interface{}{"to_status": "escrow_held"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(customer, http.MethodPatch, statusPath, map[string]interface{}{"to_status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(customer, http.MethodPatch, statusPath, map[string]interface{}{
		"to_status": "escrow_held", "event_type": "payment_confirmed", "payload": map[string]interface{}{"method": "card"},
	})
	require.Equal(t, http.StatusOK, code)

	code, env = api.do(helper, http.MethodGet, fmt.Sprintf("/api/orders/%s/work-events", order.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var events []struct {
		EventType  string `json:"event_type"`
		FromStatus string `json:"from_status"`
		ToStatus   string `json:"to_status"`
		Payload    map[string]interface{}
	}
	decode(t, env, &events)
	require.Len(t, events, 1)
	assert.Equal(t, "payment_confirmed", events[0].EventType)
	assert.Equal(t, "accepted", events[0].FromStatus)
	assert.Equal(t, "escrow_held", events[0].ToStatus)
	assert.Equal(t, "card", events[0].Payload["method"])

	code, env = api.do(customer, http.MethodGet, fmt.Sprintf("/api/orders/%s/payments", order.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var payments []struct {
		Type   string
		Amount int64
	}
	decode(t, env, &payments)
	require.Len(t, payments, 1)
	assert.Equal(t, "escrow_hold", payments[0].Type)
	assert.Equal(t, int64(49920), payments[0].Amount)

	code, env = api.do(helper, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, code)
	var orders []struct{ ID uuid.UUID }
	decode(t, env, &orders)
	require.Len(t, orders, 1)
}

func TestChatEndpoints(t *testing.T) {
	api, _ := newTestRouter(t)
	customer, helper := uuid.New(), uuid.New()

	_, env := api.do(customer, http.MethodPost, "/api/addresses", map[string]interface{}{
		"region_sigungu": "마포구", "region_dong": "서교동", "address_line": "와우산로 1",
	})
	var address struct{ ID uuid.UUID }
	decode(t, env, &address)

	_, env = api.do(customer, http.MethodPost, "/api/requests", map[string]interface{}{
		"category": "laundry", "description": "이불 빨래", "price": 20000,
		"region_sigungu": "마포구", "region_dong": "서교동", "address_id": address.ID,
	})
	var req struct{ ID uuid.UUID }
	decode(t, env, &req)

	_, env = api.do(helper, http.MethodPost, fmt.Sprintf("/api/requests/%s/proposals", req.ID), map[string]interface{}{"message": "오늘 가능합니다"})
	var proposal struct{ ID uuid.UUID }
	decode(t, env, &proposal)

	_, env = api.do(customer, http.MethodPost, fmt.Sprintf("/api/requests/%s/select-proposal", req.ID), map[string]interface{}{"proposal_id": proposal.ID})
	var order struct{ ID uuid.UUID }
	decode(t, env, &order)

	code, _ := api.do(uuid.New(), http.MethodPost, "/api/chat/threads", map[string]interface{}{"order_id": order.ID})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(customer, http.MethodPost, "/api/chat/threads", map[string]interface{}{"order_id": order.ID})
	require.Equal(t, http.StatusCreated, code)
	var thread struct{ ID uuid.UUID }
	decode(t, env, &thread)

	code, env = api.do(helper, http.MethodPost, "/api/chat/threads", map[string]interface{}{"order_id": order.ID})
	require.Equal(t, http.StatusCreated, code)
	var again struct{ ID uuid.UUID }
	decode(t, env, &again)
	assert.Equal(t, thread.ID, again.ID)

	messagesPath := fmt.Sprintf("/api/chat/threads/%s/messages", thread.ID)

	code, _ = api.do(helper, http.MethodPost, messagesPath, map[string]interface{}{"type": "image"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(uuid.New(), http.MethodPost, messagesPath, map[string]interface{}{"type": "video"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(helper, http.MethodPost, messagesPath, map[string]interface{}{"content": "10시에 도착합니다"})
	require.Equal(t, http.StatusCreated, code)
	var msg struct {
		Type     string
		SenderID uuid.UUID `json:"sender_id"`
	}
	decode(t, env, &msg)
	assert.Equal(t, "text", msg.Type)
	assert.Equal(t, helper, msg.SenderID)

	code, env = api.do(customer, http.MethodGet, messagesPath+"?limit=500", nil)
	require.Equal(t, http.StatusOK, code)
	var messages []struct{ Content string }
	decode(t, env, &messages)
	require.Len(t, messages, 1)
	assert.Equal(t, "10시에 도착합니다", messages[0].Content)

	code, _ = api.do(uuid.New(), http.MethodGet, messagesPath, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(customer, http.MethodGet, "/api/chat/threads/not-a-uuid/messages", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRejectAndWithdrawReturnProposal(t *testing.T) {
	api, _ := newTestRouter(t)
	customer := uuid.New()

	_, env := api.do(customer, http.MethodPost, "/api/addresses", map[string]interface{}{
		"region_sigungu": "송파구", "region_dong": "잠실동", "address_line": "올림픽로 1",
	})
	var address struct{ ID uuid.UUID }
	decode(t, env, &address)

	code, env := api.do(customer, http.MethodPost, "/api/requests", map[string]interface{}{
		"category": "moving", "description": "짐 옮기기", "price": 70000,
		"region_sigungu": "송파구", "region_dong": "잠실동", "address_id": address.ID,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var req struct{ ID uuid.UUID }
	decode(t, env, &req)

	type proposalBody struct {
		ID        uuid.UUID `json:"id"`
		RequestID uuid.UUID `json:"request_id"`
		HelperID  uuid.UUID `json:"helper_id"`
		Message   string    `json:"message"`
		Status    string    `json:"status"`
	}
	submit := func(helper uuid.UUID) proposalBody {
		code, env := api.do(helper, http.MethodPost, fmt.Sprintf("/api/requests/%s/proposals", req.ID), map[string]interface{}{
			"message": "튼튼하게 옮겨 드립니다",
		})
		require.Equal(t, http.StatusCreated, code, env.Error)
		var p proposalBody
		decode(t, env, &p)
		return p
	}

	first, second := uuid.New(), uuid.New()
	rejected := submit(first)
	withdrawn := submit(second)

	code, env = api.do(customer, http.MethodPost, "/api/proposals/"+rejected.ID.String()+"/reject", nil)
	require.Equal(t, http.StatusOK, code)
	var body proposalBody
	decode(t, env, &body)
	assert.Equal(t, rejected.ID, body.ID)
	assert.Equal(t, req.ID, body.RequestID)
	assert.Equal(t, first, body.HelperID)
	assert.Equal(t, "튼튼하게 옮겨 드립니다", body.Message)
	assert.Equal(t, "rejected", body.Status)

	code, env = api.do(second, http.MethodPost, "/api/proposals/"+withdrawn.ID.String()+"/withdraw", nil)
	require.Equal(t, http.StatusOK, code)
	body = proposalBody{}
	decode(t, env, &body)
	assert.Equal(t, withdrawn.ID, body.ID)
	assert.Equal(t, second, body.HelperID)
	assert.Equal(t, "withdrawn", body.Status)

	code, _ = api.do(first, http.MethodPost, "/api/proposals/"+rejected.ID.String()+"/withdraw", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = api.do(customer, http.MethodPost, "/api/proposals/"+withdrawn.ID.String()+"/reject", nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestProfileAndAddressEndpoints(t *testing.T) {
	api, _ := newTestRouter(t)
	user := uuid.New()

	code, env := api.do(user, http.MethodGet, "/api/profiles/me", nil)
	require.Equal(t, http.StatusOK, code)
	var profile struct {
		Name          string
		Tier          string
		MatchingScore int `json:"matching_score"`
	}
	decode(t, env, &profile)
	assert.NotEmpty(t, profile.Name)
	assert.Equal(t, "BRONZE", profile.Tier)
	assert.Equal(t, 500, profile.MatchingScore)

	code, env = api.do(user, http.MethodPatch, "/api/profiles/me", map[string]interface{}{"name": ""})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(user, http.MethodPatch, "/api/profiles/me", map[string]interface{}{"name": "김집사"})
	require.Equal(t, http.StatusOK, code)
	decode(t, env, &profile)
	assert.Equal(t, "김집사", profile.Name)

	code, _ = api.do(user, http.MethodPost, "/api/addresses", map[string]interface{}{"region_sigungu": "강남구"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(user, http.MethodPost, "/api/addresses", "not an object")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(user, http.MethodPost, "/api/addresses", map[string]interface{}{
		"region_sigungu": "강남구", "region_dong": "역삼동", "address_line": "테헤란로 1", "lat": 37.5, "lng": 127.0,
	})
	require.Equal(t, http.StatusCreated, code)
	var address struct{ ID uuid.UUID }
	decode(t, env, &address)

	code, _ = api.do(uuid.New(), http.MethodDelete, "/api/addresses/"+address.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.do(user, http.MethodDelete, "/api/addresses/"+address.ID.String(), nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(user, http.MethodGet, "/api/addresses", nil)
	require.Equal(t, http.StatusOK, code)
	var list []struct{ ID uuid.UUID }
	decode(t, env, &list)
	assert.Empty(t, list)
}

package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blues/cfl/internal/event"
	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/router"
	"github.com/blues/cfl/internal/store"
	"github.com/gin-gonic/gin"
)

const (
	organizer = "0x1000000000000000000000000000000000000001"
	donorA    = "0x2000000000000000000000000000000000000002"
	donorB    = "0x3000000000000000000000000000000000000003"
)

type apiEnv struct {
	t      *testing.T
	clock  time.Time
	router *gin.Engine
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e := &apiEnv{
		t:     t,
		clock: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	l := ledger.New(store.NewMemoryStore(), event.NopEmitter{}, func() time.Time { return e.clock })
	e.router = router.Setup(l)
	return e
}

func (e *apiEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	e.t.Helper()
	var resp struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		e.t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp.Data
}

// createCampaign 经 API 创建窗口为 [now+1h, now+24h) 的活动，返回活动地址
func (e *apiEnv) createCampaign(title string, goal float64) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/v1/campaigns", gin.H{
		"authority": organizer,
		"title":     title,
		"goal":      goal,
		"startAt":   e.clock.Add(time.Hour).Format(time.RFC3339),
		"endAt":     e.clock.Add(24 * time.Hour).Format(time.RFC3339),
	})
	if w.Code != http.StatusCreated {
		e.t.Fatalf("create campaign: status %d, body %s", w.Code, w.Body.String())
	}
	addr, _ := e.decode(w)["address"].(string)
	if addr == "" {
		e.t.Fatalf("create campaign: no address in response %s", w.Body.String())
	}
	return addr
}

func (e *apiEnv) deposit(addr string, amount float64) {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/v1/accounts", gin.H{"address": addr, "amount": amount})
	if w.Code != http.StatusOK {
		e.t.Fatalf("deposit: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	e := newAPIEnv(t)
	w := e.do(http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: status %d", w.Code)
	}
}

func TestCampaignLifecycleOverAPI(t *testing.T) {
	e := newAPIEnv(t)
	e.deposit(donorA, 20)
	e.deposit(donorB, 20)

	campaignAddr := e.createCampaign("clean water", 10)

	// 创建后状态 pending
	w := e.do(http.MethodGet, "/api/v1/campaigns/"+campaignAddr, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get campaign: status %d", w.Code)
	}
	if got := e.decode(w)["status"]; got != "pending" {
		t.Fatalf("status = %v, want pending", got)
	}

	// 进入窗口后折算为 active
	e.clock = e.clock.Add(time.Hour)
	w = e.do(http.MethodGet, "/api/v1/campaigns/"+campaignAddr, nil)
	if got := e.decode(w)["status"]; got != "active" {
		t.Fatalf("status = %v, want active", got)
	}

	// 两笔捐赠达标
	w = e.do(http.MethodPost, "/api/v1/campaigns/"+campaignAddr+"/donations", gin.H{"donor": donorA, "amount": 5.5})
	if w.Code != http.StatusCreated {
		t.Fatalf("donation a: status %d, body %s", w.Code, w.Body.String())
	}
	w = e.do(http.MethodPost, "/api/v1/campaigns/"+campaignAddr+"/donations", gin.H{"donor": donorB, "amount": 4.5})
	if w.Code != http.StatusCreated {
		t.Fatalf("donation b: status %d, body %s", w.Code, w.Body.String())
	}

	// 达标后的捐赠 409
	w = e.do(http.MethodPost, "/api/v1/campaigns/"+campaignAddr+"/donations", gin.H{"donor": donorA, "amount": 1})
	if w.Code != http.StatusConflict {
		t.Fatalf("donation after completion: status %d, want 409", w.Code)
	}

	// 统计接口反映达标
	w = e.do(http.MethodGet, "/api/v1/campaigns/"+campaignAddr+"/stats", nil)
	stats := e.decode(w)
	if got := stats["completion_percentage"].(float64); got != 100 {
		t.Fatalf("completion percentage = %f, want 100", got)
	}
	if got := stats["contribution_count"].(float64); got != 2 {
		t.Fatalf("contribution count = %f, want 2", got)
	}

	// 非发起人领取 403
	w = e.do(http.MethodPost, "/api/v1/campaigns/"+campaignAddr+"/claim", gin.H{"actor": donorA})
	if w.Code != http.StatusForbidden {
		t.Fatalf("claim by donor: status %d, want 403", w.Code)
	}

	// 发起人领取成功，余额到账
	w = e.do(http.MethodPost, "/api/v1/campaigns/"+campaignAddr+"/claim", gin.H{"actor": organizer})
	if w.Code != http.StatusOK {
		t.Fatalf("claim: status %d, body %s", w.Code, w.Body.String())
	}
	w = e.do(http.MethodGet, "/api/v1/accounts/"+organizer, nil)
	if got := e.decode(w)["balance"].(float64); got != 10 {
		t.Fatalf("organizer balance = %f, want 10", got)
	}

	// 重复领取 409
	w = e.do(http.MethodPost, "/api/v1/campaigns/"+campaignAddr+"/claim", gin.H{"actor": organizer})
	if w.Code != http.StatusConflict {
		t.Fatalf("second claim: status %d, want 409", w.Code)
	}

	// 领取后捐赠记录折算为 claimed
	w = e.do(http.MethodGet, fmt.Sprintf("/api/v1/campaigns/%s/donations/%s", campaignAddr, donorA), nil)
	if got := e.decode(w)["status"]; got != "claimed" {
		t.Fatalf("contribution status = %v, want claimed", got)
	}
}

func TestDonationCancelOverAPI(t *testing.T) {
	e := newAPIEnv(t)
	e.deposit(donorA, 10)

	campaignAddr := e.createCampaign("garden", 100)
	e.clock = e.clock.Add(time.Hour)

	w := e.do(http.MethodPost, "/api/v1/campaigns/"+campaignAddr+"/donations", gin.H{"donor": donorA, "amount": 4})
	if w.Code != http.StatusCreated {
		t.Fatalf("donate: status %d, body %s", w.Code, w.Body.String())
	}

	// 他人冒充撤回 403
	path := fmt.Sprintf("/api/v1/campaigns/%s/donations/%s/cancel", campaignAddr, donorA)
	w = e.do(http.MethodPost, path, gin.H{"actor": donorB})
	if w.Code != http.StatusForbidden {
		t.Fatalf("cancel by stranger: status %d, want 403", w.Code)
	}

	w = e.do(http.MethodPost, path, gin.H{"actor": donorA})
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: status %d, body %s", w.Code, w.Body.String())
	}
	w = e.do(http.MethodGet, "/api/v1/accounts/"+donorA, nil)
	if got := e.decode(w)["balance"].(float64); got != 10 {
		t.Fatalf("donor balance after cancel = %f, want 10", got)
	}

	// 重复撤回 409
	w = e.do(http.MethodPost, path, gin.H{"actor": donorA})
	if w.Code != http.StatusConflict {
		t.Fatalf("second cancel: status %d, want 409", w.Code)
	}
}

func TestRefundOverAPI(t *testing.T) {
	e := newAPIEnv(t)
	e.deposit(donorA, 10)

	campaignAddr := e.createCampaign("radio", 100)
	e.clock = e.clock.Add(time.Hour)

	w := e.do(http.MethodPost, "/api/v1/campaigns/"+campaignAddr+"/donations", gin.H{"donor": donorA, "amount": 6})
	if w.Code != http.StatusCreated {
		t.Fatalf("donate: status %d", w.Code)
	}

	path := fmt.Sprintf("/api/v1/campaigns/%s/donations/%s/refund", campaignAddr, donorA)

	// 窗口未结束 409
	w = e.do(http.MethodPost, path, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("refund before deadline: status %d, want 409", w.Code)
	}

	// 窗口结束后任何人可触发退款（无请求体）
	e.clock = e.clock.Add(24 * time.Hour)
	w = e.do(http.MethodPost, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("refund: status %d, body %s", w.Code, w.Body.String())
	}
	w = e.do(http.MethodGet, "/api/v1/accounts/"+donorA, nil)
	if got := e.decode(w)["balance"].(float64); got != 10 {
		t.Fatalf("donor balance after refund = %f, want 10", got)
	}
}

func TestValidationErrorsOverAPI(t *testing.T) {
	e := newAPIEnv(t)

	// 缺字段 400
	w := e.do(http.MethodPost, "/api/v1/campaigns", gin.H{"title": "no authority"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: status %d, want 400", w.Code)
	}

	// 开始时间不在未来 400
	w = e.do(http.MethodPost, "/api/v1/campaigns", gin.H{
		"authority": organizer,
		"title":     "stale",
		"goal":      10,
		"startAt":   e.clock.Add(-time.Hour).Format(time.RFC3339),
		"endAt":     e.clock.Add(24 * time.Hour).Format(time.RFC3339),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("past start: status %d, want 400", w.Code)
	}

	// 活动不存在 404
	w = e.do(http.MethodGet, "/api/v1/campaigns/0x000000000000000000000000000000000000dead", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing campaign: status %d, want 404", w.Code)
	}

	// 重复创建 409
	e.createCampaign("twice", 10)
	w = e.do(http.MethodPost, "/api/v1/campaigns", gin.H{
		"authority": organizer,
		"title":     "twice",
		"goal":      10,
		"startAt":   e.clock.Add(time.Hour).Format(time.RFC3339),
		"endAt":     e.clock.Add(24 * time.Hour).Format(time.RFC3339),
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate campaign: status %d, want 409", w.Code)
	}

	// 余额不足 400
	campaignAddr := e.createCampaign("dry", 10)
	e.clock = e.clock.Add(time.Hour)
	w = e.do(http.MethodPost, "/api/v1/campaigns/"+campaignAddr+"/donations", gin.H{"donor": donorA, "amount": 5})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unfunded donor: status %d, want 400", w.Code)
	}
}

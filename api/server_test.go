package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/newspulse/internal/analysis/sentiment"
	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/internal/dashboard"
	"github.com/seenimoa/newspulse/internal/datasource"
	"github.com/seenimoa/newspulse/internal/portfolio"
	"github.com/seenimoa/newspulse/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testServerWithSource(t *testing.T, src datasource.Source) *Server {
	t.Helper()
	log := quietLogger()
	tr := portfolio.NewTracker(sentiment.FixedConfidence(80))
	svc := dashboard.New(tr, src, dashboard.Options{AlertsEnabled: true, Logger: log})
	if err := svc.Prime(context.Background()); err != nil {
		t.Fatalf("Prime: %v", err)
	}
	cfg := &config.Config{}
	cfg.API.Port = 8080

	srv := NewServer(cfg, svc, log)
	go srv.wsHub.Run()
	t.Cleanup(srv.Close)
	return srv
}

func testServer(t *testing.T) *Server {
	t.Helper()
	return testServerWithSource(t, datasource.NewStatic())
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func addHolding(t *testing.T, srv *Server, body string) map[string]interface{} {
	t.Helper()
	rec := do(t, srv, "POST", "/api/v1/holdings", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add holding %s: status %d: %s", body, rec.Code, rec.Body.String())
	}
	return decodeResponse(t, rec).Data.(map[string]interface{})
}

// ════════════════════════════════════════════════════════════════════
// Request type tests
// ════════════════════════════════════════════════════════════════════

func TestFormValueJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    FormValue
		wantErr bool
	}{
		{"string", `"10"`, "10", false},
		{"integer", `10`, "10", false},
		{"decimal", `2450.75`, "2450.75", false},
		{"null", `null`, "", false},
		{"bool", `true`, "", true},
		{"object", `{}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v FormValue
			err := json.Unmarshal([]byte(tt.json), &v)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if v != tt.want {
				t.Errorf("got %q, want %q", v, tt.want)
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Health
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := do(t, srv, "GET", path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status: got %d, want %d", path, rec.Code, http.StatusOK)
		}

		resp := decodeResponse(t, rec)
		if !resp.Success {
			t.Error("expected success=true")
		}
		data, ok := resp.Data.(map[string]interface{})
		if !ok {
			t.Fatal("data should be a map")
		}
		if data["status"] != "ok" {
			t.Errorf("status: got %q", data["status"])
		}
		for _, key := range []string{"market_status", "time_ist", "version"} {
			if _, ok := data[key]; !ok {
				t.Errorf("missing %s", key)
			}
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Holdings
// ════════════════════════════════════════════════════════════════════

func TestAddHolding(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name   string
		body   string
		symbol string
		value  string
	}{
		{"strings", `{"symbol":"reliance","quantity":"10","price":"2450.50"}`, "RELIANCE", "24505"},
		{"numbers", `{"symbol":"TCS","quantity":5,"price":3500}`, "TCS", "17500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := addHolding(t, srv, tt.body)
			if data["symbol"] != tt.symbol {
				t.Errorf("symbol: got %v, want %s", data["symbol"], tt.symbol)
			}
			if data["value"] != tt.value {
				t.Errorf("value: got %v, want %s", data["value"], tt.value)
			}
			if _, err := uuid.Parse(data["id"].(string)); err != nil {
				t.Errorf("id is not a UUID: %v", data["id"])
			}
			if !strings.HasPrefix(data["value_display"].(string), "₹") {
				t.Errorf("value_display: got %v", data["value_display"])
			}
		})
	}

	rec := do(t, srv, "GET", "/api/v1/holdings", "")
	holdings := decodeResponse(t, rec).Data.([]interface{})
	if len(holdings) != 2 {
		t.Fatalf("holdings: got %d, want 2", len(holdings))
	}
}

func TestAddHoldingValidation(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"symbol":`},
		{"bool quantity", `{"symbol":"TCS","quantity":true,"price":"1"}`},
		{"missing symbol", `{"quantity":"1","price":"1"}`},
		{"zero quantity", `{"symbol":"TCS","quantity":"0","price":"1"}`},
		{"fractional quantity", `{"symbol":"TCS","quantity":"1.5","price":"1"}`},
		{"negative price", `{"symbol":"TCS","quantity":"1","price":"-5"}`},
		{"non-numeric price", `{"symbol":"TCS","quantity":"1","price":"abc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, "POST", "/api/v1/holdings", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rec.Code)
			}
			if resp := decodeResponse(t, rec); resp.Success || resp.Error == "" {
				t.Errorf("unexpected response %+v", resp)
			}
		})
	}

	if n := len(srv.svc.Tracker().Holdings()); n != 0 {
		t.Errorf("invalid requests added %d holdings", n)
	}
}

func TestRemoveHolding(t *testing.T) {
	srv := testServer(t)
	data := addHolding(t, srv, `{"symbol":"TCS","quantity":"1","price":"1"}`)
	id := data["id"].(string)

	if rec := do(t, srv, "DELETE", "/api/v1/holdings/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d, want 400", rec.Code)
	}
	if rec := do(t, srv, "DELETE", "/api/v1/holdings/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d, want 404", rec.Code)
	}
	if rec := do(t, srv, "DELETE", "/api/v1/holdings/"+id, ""); rec.Code != http.StatusOK {
		t.Errorf("remove: got %d, want 200", rec.Code)
	}
	if rec := do(t, srv, "DELETE", "/api/v1/holdings/"+id, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second remove: got %d, want 404", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// News and analysis
// ════════════════════════════════════════════════════════════════════

func TestRelevantNewsAndAnalysis(t *testing.T) {
	srv := testServer(t)

	// Empty portfolio: nothing relevant and no portfolio sentiment.
	rec := do(t, srv, "GET", "/api/v1/analysis", "")
	var empty struct {
		Data AnalysisResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&empty); err != nil {
		t.Fatal(err)
	}
	if len(empty.Data.Analyses) != 0 || empty.Data.PortfolioSentiment != nil {
		t.Errorf("unexpected analysis for empty portfolio: %+v", empty.Data)
	}

	addHolding(t, srv, `{"symbol":"HDFC","quantity":"10","price":"1500"}`)
	addHolding(t, srv, `{"symbol":"ICICI","quantity":"5","price":"900"}`)

	rec = do(t, srv, "GET", "/api/v1/news/relevant", "")
	relevant := decodeResponse(t, rec).Data.([]interface{})
	if len(relevant) != 1 || relevant[0].(map[string]interface{})["id"] != "1" {
		t.Fatalf("relevant news: %v", relevant)
	}

	rec = do(t, srv, "GET", "/api/v1/analysis", "")
	var got struct {
		Data AnalysisResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Data.Analyses) != 1 {
		t.Fatalf("analyses: got %d, want 1", len(got.Data.Analyses))
	}
	a := got.Data.Analyses[0]
	if a.Sentiment != models.SentimentPositive || a.Confidence != 80 {
		t.Errorf("analysis: %+v", a)
	}
	if strings.Join(a.AffectedStocks, ",") != "HDFC,ICICI" {
		t.Errorf("affected stocks: %v", a.AffectedStocks)
	}
	ps := got.Data.PortfolioSentiment
	if ps == nil || ps.Sentiment != models.SentimentPositive || math.Abs(ps.Score-0.8) > 1e-9 || ps.Confidence != 80 {
		t.Errorf("portfolio sentiment: %+v", ps)
	}
}

func TestSetNews(t *testing.T) {
	srv := testServer(t)
	addHolding(t, srv, `{"symbol":"WIPRO","quantity":"1","price":"400"}`)

	body := `[{"id":"x1","headline":"Wipro shares decline on weak guidance","source":"Wire","time":"now","category":"Earnings","stocks":["WIPRO"]}]`
	rec := do(t, srv, "PUT", "/api/v1/news", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}

	derived := srv.svc.Tracker().DerivedState()
	if len(derived.Analyses) != 1 || derived.Analyses[0].Sentiment != models.SentimentNegative {
		t.Fatalf("analyses after replace: %+v", derived.Analyses)
	}
	if derived.PortfolioSentiment.Sentiment != models.SentimentNegative {
		t.Errorf("portfolio sentiment: %+v", derived.PortfolioSentiment)
	}

	rec = do(t, srv, "GET", "/api/v1/news", "")
	if news := decodeResponse(t, rec).Data.([]interface{}); len(news) != 1 {
		t.Errorf("news: got %d items, want 1", len(news))
	}

	if rec := do(t, srv, "PUT", "/api/v1/news", `{"not":"a list"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid body: got %d, want 400", rec.Code)
	}
}

// slowSource blocks until release is closed.
type slowSource struct {
	release chan struct{}
}

func (s *slowSource) Name() string { return "slow" }

func (s *slowSource) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	select {
	case <-s.release:
		return datasource.ReferenceFeed, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestRefresh(t *testing.T) {
	srv := testServer(t)
	rec := do(t, srv, "POST", "/api/v1/news/refresh", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}
	state := decodeResponse(t, rec).Data.(map[string]interface{})
	if state["refreshing"] != false {
		t.Errorf("refreshing: got %v", state["refreshing"])
	}
	if news := state["news"].([]interface{}); len(news) != 8 {
		t.Errorf("news: got %d, want 8", len(news))
	}
}

func TestRefreshConflict(t *testing.T) {
	src := &slowSource{release: make(chan struct{})}
	close(src.release)
	srv := testServerWithSource(t, src)
	src.release = make(chan struct{})

	done := make(chan int, 1)
	go func() {
		done <- do(t, srv, "POST", "/api/v1/news/refresh", "").Code
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !srv.svc.Refreshing() {
		if time.Now().After(deadline) {
			t.Fatal("refresh never started")
		}
		time.Sleep(time.Millisecond)
	}

	if rec := do(t, srv, "POST", "/api/v1/news/refresh", ""); rec.Code != http.StatusConflict {
		t.Errorf("concurrent refresh: got %d, want 409", rec.Code)
	}

	close(src.release)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first refresh: got %d, want 200", code)
	}
}

// ════════════════════════════════════════════════════════════════════
// Alerts, state, config
// ════════════════════════════════════════════════════════════════════

func TestAlerts(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, "GET", "/api/v1/alerts", "")
	if data := decodeResponse(t, rec).Data.(map[string]interface{}); data["enabled"] != true {
		t.Errorf("initial alerts: %v", data)
	}

	rec = do(t, srv, "PUT", "/api/v1/alerts", `{"enabled":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if srv.svc.AlertsEnabled() {
		t.Error("alerts still enabled")
	}

	if rec := do(t, srv, "PUT", "/api/v1/alerts", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing enabled: got %d, want 400", rec.Code)
	}
}

func TestHandleState(t *testing.T) {
	srv := testServer(t)
	addHolding(t, srv, `{"symbol":"RELIANCE","quantity":"2","price":"100"}`)

	rec := do(t, srv, "GET", "/api/v1/state", "")
	st := decodeResponse(t, rec).Data.(map[string]interface{})
	for _, key := range []string{"holdings", "news", "filtered_news", "analyses", "portfolio_sentiment", "alerts_enabled", "total_value"} {
		if _, ok := st[key]; !ok {
			t.Errorf("state missing %q", key)
		}
	}
	if st["total_value"] != "200" {
		t.Errorf("total_value: got %v", st["total_value"])
	}
}

func TestHandleConfigHidesKeys(t *testing.T) {
	srv := testServer(t)
	srv.cfg.Feed.APIKey = "super-secret-key-123"

	rec := do(t, srv, "GET", "/api/v1/config", "")
	if bytes.Contains(rec.Body.Bytes(), []byte("super-secret-key-123")) {
		t.Fatal("config response leaks the API key")
	}

	rec = do(t, srv, "GET", "/api/v1/config/keys", "")
	keys := decodeResponse(t, rec).Data.([]interface{})
	if len(keys) != 1 || keys[0].(map[string]interface{})["masked"] != "sup...123" {
		t.Errorf("keys: %v", keys)
	}
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusTeapot, APIResponse{Success: true, Data: "hi"})
	if rec.Code != http.StatusTeapot {
		t.Errorf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, "bad input")
	resp := decodeResponse(t, rec)
	if resp.Success || resp.Error != "bad input" {
		t.Errorf("unexpected response %+v", resp)
	}
}

// ════════════════════════════════════════════════════════════════════
// WebSocket Hub tests
// ════════════════════════════════════════════════════════════════════

func TestWSHub_RegisterAndUnregister(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()
	defer hub.Stop()

	client := &WSClient{hub: hub, send: make(chan WSMessage, 256)}

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)
	if hub.ClientCount() != 1 {
		t.Errorf("after register: ClientCount=%d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)
	if hub.ClientCount() != 0 {
		t.Errorf("after unregister: ClientCount=%d, want 0", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after unregister")
	}
}

func TestWSHub_Broadcast(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()
	defer hub.Stop()

	client1 := &WSClient{hub: hub, send: make(chan WSMessage, 256)}
	client2 := &WSClient{hub: hub, send: make(chan WSMessage, 256)}
	hub.Register(client1)
	hub.Register(client2)

	hub.Broadcast(WSMessage{Type: "test", Data: "hello"})

	for i, c := range []*WSClient{client1, client2} {
		select {
		case got := <-c.send:
			if got.Type != "test" {
				t.Errorf("client%d got type=%q, want 'test'", i+1, got.Type)
			}
		case <-time.After(time.Second):
			t.Errorf("client%d did not receive message", i+1)
		}
	}
}

func TestWSHub_SlowClientDisconnected(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()
	defer hub.Stop()

	slow := &WSClient{hub: hub, send: make(chan WSMessage)} // never drained
	hub.Register(slow)
	hub.Broadcast(WSMessage{Type: "test"})

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not disconnected")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWSHub_BroadcastDoesNotBlock(t *testing.T) {
	hub := NewWSHub() // not running: the buffer fills up
	done := make(chan bool)
	go func() {
		for i := 0; i < 300; i++ {
			hub.Broadcast(WSMessage{Type: "test"})
		}
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full channel")
	}
}

func TestWebSocketStream(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read initial state: %v", err)
	}
	if msg.Type != dashboard.EventStateUpdated {
		t.Fatalf("first message type: got %q", msg.Type)
	}

	// Wait for the hub to register the client before mutating.
	deadline := time.Now().Add(2 * time.Second)
	for srv.wsHub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	addHolding(t, srv, `{"symbol":"TCS","quantity":"1","price":"3500"}`)

	seen := map[string]bool{}
	for !(seen[dashboard.EventStateUpdated] && seen[dashboard.EventNewsAlert]) {
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read event: %v (seen %v)", err, seen)
		}
		seen[msg.Type] = true
	}

	if err := conn.WriteJSON(WSMessage{Type: "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	for msg.Type != "pong" {
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read pong: %v", err)
		}
	}
}

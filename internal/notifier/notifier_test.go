package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AlertSentinel/internal/model"
	"AlertSentinel/internal/strategy"
	"AlertSentinel/internal/window"
)

func newTestNotifier(url string) *TelegramNotifier {
	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = url
	tn.RetryBase = time.Millisecond
	return tn
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "<b>hi</b>", got["text"])
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"ok":false}`, http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := newTestNotifier(srv.URL)
	require.NoError(t, tn.SendWithRetry(context.Background(), "x", 3))
	assert.EqualValues(t, 3, calls.Load())

	calls.Store(-10)
	err := tn.SendWithRetry(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 retries exhausted")
}

func TestDispatch(t *testing.T) {
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p map[string]string
		json.NewDecoder(r.Body).Decode(&p)
		sent = append(sent, p["text"])
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var updates []telegramUpdate
	require.NoError(t, json.Unmarshal([]byte(`[
		{"update_id": 7, "message": {"text": " /last "}},
		{"update_id": 8},
		{"update_id": 9, "message": {"text": "/quiet"}}
	]`), &updates))

	handler := func(_ context.Context, cmd string) string {
		if cmd == "/last" {
			return "reply:" + cmd
		}
		return ""
	}
	next := newTestNotifier(srv.URL).dispatch(context.Background(), updates, 0, handler)
	assert.Equal(t, 10, next)
	assert.Equal(t, []string{"reply:/last"}, sent)
}

func TestPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("offset"))
		fmt.Fprint(w, `{"ok":true,"result":[{"update_id":5,"message":{"text":"/help"}}]}`)
	}))
	defer srv.Close()

	updates, err := newTestNotifier(srv.URL).poll(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "/help", updates[0].Message.Text)
}

func TestFormatLastAction(t *testing.T) {
	assert.Contains(t, FormatLastAction(nil, time.Time{}), "No action")

	msg := FormatLastAction(&model.LastAction{Action: model.ActionSell, Ticker: "ETH", Strategy: "Sell on Premium zone"},
		time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(msg, "🔴 <b>Sell ETH</b>"))
	assert.Contains(t, msg, "Strategy: Sell on Premium zone")
	assert.Contains(t, msg, "2024-06-01 12:00:00")
}

func TestFormatScores(t *testing.T) {
	msg := FormatScores(strategy.Result{TickerData: []model.TickerScore{{
		Strategy: "Buy <fast>", Ticker: "BTC", Timeframe: "15m", Score: 4.2,
		AlertsFound: []string{"Normal Bullish Divergence", "Discount Zone"}, MissingAlerts: []string{"Buy"},
	}}})
	assert.Contains(t, msg, "Buy &lt;fast&gt;")
	assert.Contains(t, msg, "score 4.20 | Normal Bullish Divergence, Discount Zone")
	assert.Contains(t, msg, "→ Buy")

	assert.Contains(t, FormatScores(strategy.Result{}), "No strategy triggered.")
}

func TestFormatAlertGroups(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := window.NewFilter(&model.TimeframeConfig{GlobalDefault: 10})
	groups := []model.TickerGroup{{Ticker: "BTC", Timeframe: "15m", Alerts: []model.Alert{
		{Timeframe: "15m", Indicator: "Nautilus™", Trigger: "Normal Bullish Divergence", Timestamp: now.Add(-9*time.Minute - 50*time.Second).Format(time.RFC3339)},
	}}}

	msg := FormatAlertGroups(groups, f, now)
	assert.Contains(t, msg, "<b>BTC 15m</b>")
	assert.Contains(t, msg, "Normal Bullish Divergence (10s) ⏳")
	assert.Contains(t, FormatAlertGroups(nil, f, now), "No alerts.")
}

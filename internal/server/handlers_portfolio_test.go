package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPortfolio_EmptyAccount(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "hunter22")

	rec := env.request(t, http.MethodGet, "/api/portfolio", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Username  string            `json:"username"`
			Cash      string            `json:"cash"`
			NetWorth  string            `json:"net_worth"`
			Positions []json.RawMessage `json:"positions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Username != "alice" {
		t.Errorf("username = %q, want alice", resp.Data.Username)
	}
	if resp.Data.Cash != "10000" && resp.Data.Cash != "10000.00" {
		t.Errorf("cash = %q, want 10000.00", resp.Data.Cash)
	}
	if len(resp.Data.Positions) != 0 {
		t.Errorf("positions = %d, want 0", len(resp.Data.Positions))
	}
}

func TestPortfolio_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/portfolio", "/api/portfolio/history", "/api/portfolio/chart"} {
		rec := env.request(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestPortfolio_AfterTrades(t *testing.T) {
	env := newTestEnv(t)
	env.client.prices["AAPL"] = "50.00"
	token := env.register(t, "alice", "hunter22")

	rec := env.request(t, http.MethodPost, "/api/trade/buy", token, tradeBody{Symbol: "AAPL", Shares: 10})
	if rec.Code != http.StatusOK {
		t.Fatalf("buy: status = %d", rec.Code)
	}

	env.client.prices["AAPL"] = "55.00"
	rec = env.request(t, http.MethodPost, "/api/trade/sell", token, tradeBody{Symbol: "AAPL", Shares: 4})
	if rec.Code != http.StatusOK {
		t.Fatalf("sell: status = %d", rec.Code)
	}

	rec = env.request(t, http.MethodGet, "/api/portfolio", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("portfolio: status = %d", rec.Code)
	}

	var resp struct {
		Data struct {
			Positions []struct {
				Symbol      string `json:"symbol"`
				Shares      int64  `json:"shares"`
				MarketValue string `json:"market_value"`
			} `json:"positions"`
			NetWorth string `json:"net_worth"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(resp.Data.Positions))
	}
	if resp.Data.Positions[0].Shares != 6 {
		t.Errorf("shares = %d, want 6", resp.Data.Positions[0].Shares)
	}
	if !decimal.RequireFromString(resp.Data.Positions[0].MarketValue).Equal(decimal.RequireFromString("330")) {
		t.Errorf("market value = %q, want 330.00", resp.Data.Positions[0].MarketValue)
	}
}

func TestPortfolioHistory_Chronological(t *testing.T) {
	env := newTestEnv(t)
	env.client.prices["AAPL"] = "50.00"
	env.client.prices["MSFT"] = "400.00"
	token := env.register(t, "alice", "hunter22")

	env.request(t, http.MethodPost, "/api/trade/buy", token, tradeBody{Symbol: "AAPL", Shares: 2})
	env.request(t, http.MethodPost, "/api/trade/buy", token, tradeBody{Symbol: "MSFT", Shares: 1})
	env.request(t, http.MethodPost, "/api/trade/sell", token, tradeBody{Symbol: "AAPL", Shares: 1})

	rec := env.request(t, http.MethodGet, "/api/portfolio/history", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data []struct {
			Symbol string `json:"symbol"`
			Shares int64  `json:"shares"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("entries = %d, want 3", len(resp.Data))
	}
	if resp.Data[0].Symbol != "AAPL" || resp.Data[0].Shares != 2 {
		t.Errorf("entry[0] = %+v, want buy 2 AAPL", resp.Data[0])
	}
	if resp.Data[2].Shares != -1 {
		t.Errorf("entry[2].shares = %d, want -1", resp.Data[2].Shares)
	}
}

func TestPortfolioChart_ReturnsPNG(t *testing.T) {
	env := newTestEnv(t)
	env.client.prices["AAPL"] = "50.00"
	token := env.register(t, "alice", "hunter22")

	rec := env.request(t, http.MethodPost, "/api/trade/buy", token, tradeBody{Symbol: "AAPL", Shares: 10})
	if rec.Code != http.StatusOK {
		t.Fatalf("buy: status = %d", rec.Code)
	}

	rec = env.request(t, http.MethodGet, "/api/portfolio/chart", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("chart: status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	body := rec.Body.Bytes()
	if len(body) < 8 || string(body[1:4]) != "PNG" {
		t.Error("response is not a PNG")
	}
}

package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/hyperliquid_donchian/internal/domain"
)

const (
	MainnetBaseURL = "https://api.hyperliquid.xyz"
	TestnetBaseURL = "https://api.hyperliquid-testnet.xyz"
	MainnetWSURL   = "wss://api.hyperliquid.xyz/ws"
	TestnetWSURL   = "wss://api.hyperliquid-testnet.xyz/ws"

	// marketSlippage bounds the IOC limit price used to emulate a market
	// order, the same cushion the exchange SDKs use.
	marketSlippage = 0.05

	// wsMidTTL is how long a streamed mid price is served before falling
	// back to REST.
	wsMidTTL = 5 * time.Second
)

// HyperliquidAdapter implements domain.Exchange against the Hyperliquid
// REST and WebSocket APIs. Read endpoints are unauthenticated; order
// placement goes through the Signer.
type HyperliquidAdapter struct {
	baseURL string
	wsURL   string
	client  *http.Client
	signer  *Signer

	mu         sync.Mutex
	wsConn     *websocket.Conn
	wsDone     chan struct{}
	callbacks  []func(coin string, price float64)
	subscribed map[string]bool
	lastMids   map[string]float64
	midsAt     time.Time

	assetIndex map[string]int
	metaCache  map[string]*domain.AssetMeta
}

// NewHyperliquidAdapter builds an adapter for the given network. signer may
// be nil for read-only use (diagnostics); order submission then fails.
func NewHyperliquidAdapter(signer *Signer, mainnet bool) *HyperliquidAdapter {
	baseURL, wsURL := MainnetBaseURL, MainnetWSURL
	if !mainnet {
		baseURL, wsURL = TestnetBaseURL, TestnetWSURL
	}
	return &HyperliquidAdapter{
		baseURL:    baseURL,
		wsURL:      wsURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		signer:     signer,
		subscribed: make(map[string]bool),
		lastMids:   make(map[string]float64),
		assetIndex: make(map[string]int),
		metaCache:  make(map[string]*domain.AssetMeta),
	}
}

// --- wire types (field order matters for action hashing) ---

type orderAction struct {
	Type     string      `msgpack:"type" json:"type"`
	Orders   []wireOrder `msgpack:"orders" json:"orders"`
	Grouping string      `msgpack:"grouping" json:"grouping"`
}

type wireOrder struct {
	Asset      int           `msgpack:"a" json:"a"`
	IsBuy      bool          `msgpack:"b" json:"b"`
	Price      string        `msgpack:"p" json:"p"`
	Size       string        `msgpack:"s" json:"s"`
	ReduceOnly bool          `msgpack:"r" json:"r"`
	Type       wireOrderType `msgpack:"t" json:"t"`
}

type wireOrderType struct {
	Limit   *wireLimit   `msgpack:"limit,omitempty" json:"limit,omitempty"`
	Trigger *wireTrigger `msgpack:"trigger,omitempty" json:"trigger,omitempty"`
}

type wireLimit struct {
	Tif string `msgpack:"tif" json:"tif"`
}

type wireTrigger struct {
	IsMarket  bool   `msgpack:"isMarket" json:"isMarket"`
	TriggerPx string `msgpack:"triggerPx" json:"triggerPx"`
	Tpsl      string `msgpack:"tpsl" json:"tpsl"`
}

type orderStatus struct {
	Resting *struct {
		Oid int64 `json:"oid"`
	} `json:"resting"`
	Filled *struct {
		TotalSz string `json:"totalSz"`
		AvgPx   string `json:"avgPx"`
		Oid     int64  `json:"oid"`
	} `json:"filled"`
	Error string `json:"error"`
}

type exchangeResponse struct {
	Status   string `json:"status"`
	Response struct {
		Type string `json:"type"`
		Data struct {
			Statuses []orderStatus `json:"statuses"`
		} `json:"data"`
	} `json:"response"`
}

// --- info endpoint ---

func (h *HyperliquidAdapter) info(ctx context.Context, op string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/info", bytes.NewReader(body))
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	if resp.StatusCode >= 400 {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	return nil
}

func (h *HyperliquidAdapter) GetAccountState(ctx context.Context, address string) (*domain.AccountState, error) {
	payload := map[string]string{"type": "clearinghouseState", "user": address}

	var result struct {
		MarginSummary struct {
			AccountValue string `json:"accountValue"`
		} `json:"marginSummary"`
		AssetPositions []struct {
			Position struct {
				Coin          string  `json:"coin"`
				Szi           string  `json:"szi"`
				EntryPx       string  `json:"entryPx"`
				LiquidationPx *string `json:"liquidationPx"`
			} `json:"position"`
		} `json:"assetPositions"`
	}
	if err := h.info(ctx, "clearinghouseState", payload, &result); err != nil {
		return nil, err
	}

	balance, err := strconv.ParseFloat(result.MarginSummary.AccountValue, 64)
	if err != nil {
		return nil, &domain.TransportError{Op: "clearinghouseState", Err: fmt.Errorf("bad account value: %w", err)}
	}

	state := &domain.AccountState{Balance: balance}
	for _, ap := range result.AssetPositions {
		size, _ := strconv.ParseFloat(ap.Position.Szi, 64)
		entry, _ := strconv.ParseFloat(ap.Position.EntryPx, 64)
		pos := domain.Position{Coin: ap.Position.Coin, Size: size, EntryPrice: entry}
		if ap.Position.LiquidationPx != nil {
			pos.LiquidationPrice, _ = strconv.ParseFloat(*ap.Position.LiquidationPx, 64)
		}
		state.Positions = append(state.Positions, pos)
	}
	return state, nil
}

func (h *HyperliquidAdapter) GetMidPrice(ctx context.Context, coin string) (float64, error) {
	// Serve a recent streamed mid when the WebSocket feed is live.
	h.mu.Lock()
	if mid, ok := h.lastMids[coin]; ok && time.Since(h.midsAt) < wsMidTTL {
		h.mu.Unlock()
		return mid, nil
	}
	h.mu.Unlock()

	var mids map[string]string
	if err := h.info(ctx, "allMids", map[string]string{"type": "allMids"}, &mids); err != nil {
		return 0, err
	}

	raw, ok := mids[coin]
	if !ok {
		return 0, &domain.AssetNotFoundError{Asset: coin}
	}
	mid, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.TransportError{Op: "allMids", Err: fmt.Errorf("bad mid for %s: %w", coin, err)}
	}
	return mid, nil
}

func (h *HyperliquidAdapter) GetAssetMeta(ctx context.Context, coin string) (*domain.AssetMeta, error) {
	h.mu.Lock()
	if meta, ok := h.metaCache[coin]; ok {
		h.mu.Unlock()
		return meta, nil
	}
	h.mu.Unlock()

	if err := h.loadMeta(ctx); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	meta, ok := h.metaCache[coin]
	if !ok {
		return nil, &domain.AssetNotFoundError{Asset: coin}
	}
	return meta, nil
}

// loadMeta fetches the asset universe once; szDecimals and asset indices
// are static per network.
func (h *HyperliquidAdapter) loadMeta(ctx context.Context) error {
	var result struct {
		Universe []struct {
			Name       string `json:"name"`
			SzDecimals int    `json:"szDecimals"`
		} `json:"universe"`
	}
	if err := h.info(ctx, "meta", map[string]string{"type": "meta"}, &result); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, a := range result.Universe {
		h.assetIndex[a.Name] = i
		h.metaCache[a.Name] = &domain.AssetMeta{Name: a.Name, SzDecimals: a.SzDecimals}
	}
	return nil
}

func (h *HyperliquidAdapter) assetID(ctx context.Context, coin string) (int, error) {
	h.mu.Lock()
	id, ok := h.assetIndex[coin]
	h.mu.Unlock()
	if ok {
		return id, nil
	}

	if err := h.loadMeta(ctx); err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok = h.assetIndex[coin]
	if !ok {
		return 0, &domain.AssetNotFoundError{Asset: coin}
	}
	return id, nil
}

// --- exchange endpoint ---

func (h *HyperliquidAdapter) submitAction(ctx context.Context, op string, action interface{}) (*exchangeResponse, error) {
	if h.signer == nil {
		return nil, &domain.TransportError{Op: op, Err: fmt.Errorf("no signer configured")}
	}

	nonce := time.Now().UnixMilli()
	sig, err := h.signer.SignAction(action, nonce)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}

	payload := map[string]interface{}{
		"action":    action,
		"nonce":     nonce,
		"signature": sig,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/exchange", bytes.NewReader(body))
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	if resp.StatusCode >= 400 {
		return nil, &domain.TransportError{Op: op, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))}
	}

	var result exchangeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	return &result, nil
}

func (h *HyperliquidAdapter) SubmitMarketOrder(ctx context.Context, coin string, isBuy bool, size float64) (*domain.OrderFill, error) {
	asset, err := h.assetID(ctx, coin)
	if err != nil {
		return nil, err
	}

	mid, err := h.GetMidPrice(ctx, coin)
	if err != nil {
		return nil, err
	}

	// Market orders are aggressive IOC limits with a slippage cushion.
	limitPx := mid * (1 + marketSlippage)
	if !isBuy {
		limitPx = mid * (1 - marketSlippage)
	}

	action := &orderAction{
		Type: "order",
		Orders: []wireOrder{{
			Asset:      asset,
			IsBuy:      isBuy,
			Price:      formatPrice(limitPx),
			Size:       formatFloat(size),
			ReduceOnly: false,
			Type:       wireOrderType{Limit: &wireLimit{Tif: "Ioc"}},
		}},
		Grouping: "na",
	}

	resp, err := h.submitAction(ctx, "marketOrder", action)
	if err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, &domain.EntryRejectedError{Coin: coin, Reason: resp.Status}
	}

	statuses := resp.Response.Data.Statuses
	if len(statuses) == 0 {
		return nil, &domain.EntryRejectedError{Coin: coin, Reason: "empty status list in order response"}
	}
	if statuses[0].Error != "" {
		return nil, &domain.EntryRejectedError{Coin: coin, Reason: statuses[0].Error}
	}
	if statuses[0].Filled == nil {
		return nil, &domain.EntryRejectedError{Coin: coin, Reason: "order did not fill"}
	}

	avgPx, err := strconv.ParseFloat(statuses[0].Filled.AvgPx, 64)
	if err != nil {
		return nil, &domain.EntryRejectedError{Coin: coin, Reason: "malformed fill price in order response"}
	}
	totalSz, _ := strconv.ParseFloat(statuses[0].Filled.TotalSz, 64)

	return &domain.OrderFill{AvgPrice: avgPx, Size: totalSz}, nil
}

func (h *HyperliquidAdapter) SubmitTriggerOrder(ctx context.Context, coin string, isBuy bool, size, triggerPrice float64, role domain.TriggerRole) error {
	asset, err := h.assetID(ctx, coin)
	if err != nil {
		return err
	}

	action := &orderAction{
		Type: "order",
		Orders: []wireOrder{{
			Asset:      asset,
			IsBuy:      isBuy,
			Price:      formatFloat(triggerPrice),
			Size:       formatFloat(size),
			ReduceOnly: true,
			Type: wireOrderType{Trigger: &wireTrigger{
				IsMarket:  true,
				TriggerPx: formatFloat(triggerPrice),
				Tpsl:      string(role),
			}},
		}},
		Grouping: "na",
	}

	resp, err := h.submitAction(ctx, string(role)+"Order", action)
	if err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("trigger order rejected: %s", resp.Status)
	}

	statuses := resp.Response.Data.Statuses
	if len(statuses) == 0 {
		return fmt.Errorf("empty status list in trigger order response")
	}
	if statuses[0].Error != "" {
		return fmt.Errorf("trigger order error: %s", statuses[0].Error)
	}
	return nil
}

// --- WebSocket mids feed ---

func (h *HyperliquidAdapter) OnPriceUpdate(callback func(coin string, price float64)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks = append(h.callbacks, callback)
}

// Subscribe opens the allMids stream and marks coins of interest. Streamed
// mids back the GetMidPrice cache; the REST path remains the fallback
// whenever the stream is stale or down.
func (h *HyperliquidAdapter) Subscribe(coins []string) error {
	h.mu.Lock()
	for _, c := range coins {
		h.subscribed[c] = true
	}
	connected := h.wsConn != nil
	h.mu.Unlock()

	if connected {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.Dial(h.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial websocket: %w", err)
	}

	sub := map[string]interface{}{
		"method":       "subscribe",
		"subscription": map[string]string{"type": "allMids"},
	}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	h.mu.Lock()
	h.wsConn = conn
	h.wsDone = make(chan struct{})
	h.mu.Unlock()

	go h.readLoop(conn)
	return nil
}

func (h *HyperliquidAdapter) readLoop(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		h.mu.Lock()
		if h.wsConn == conn {
			h.wsConn = nil
			close(h.wsDone)
		}
		h.mu.Unlock()
	}()

	for {
		var msg struct {
			Channel string `json:"channel"`
			Data    struct {
				Mids map[string]string `json:"mids"`
			} `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Channel != "allMids" {
			continue
		}

		type update struct {
			coin string
			mid  float64
		}

		h.mu.Lock()
		var updates []update
		for coin, raw := range msg.Data.Mids {
			mid, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			h.lastMids[coin] = mid
			if h.subscribed[coin] {
				updates = append(updates, update{coin, mid})
			}
		}
		h.midsAt = time.Now()
		callbacks := h.callbacks
		h.mu.Unlock()

		for _, u := range updates {
			for _, cb := range callbacks {
				cb(u.coin, u.mid)
			}
		}
	}
}

// Close shuts the WebSocket connection down if one is open.
func (h *HyperliquidAdapter) Close() {
	h.mu.Lock()
	conn := h.wsConn
	h.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// --- formatting helpers ---

// formatFloat renders a number the way the wire format wants it: shortest
// decimal representation, no exponent, no trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatPrice additionally rounds to 5 significant figures, the exchange's
// price precision limit.
func formatPrice(v float64) string {
	if v == 0 {
		return "0"
	}
	digits := int(math.Ceil(math.Log10(math.Abs(v))))
	pow := math.Pow10(5 - digits)
	return formatFloat(math.Round(v*pow) / pow)
}

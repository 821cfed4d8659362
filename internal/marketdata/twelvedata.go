package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"SignalPilot/internal/model"
)

// Cache TTLs per data kind. Quotes move fast, indicators are hourly,
// higher-timeframe trends barely change intraday.
const (
	quoteTTL     = 5 * time.Minute
	indicatorTTL = time.Hour
	trendTTL     = 4 * time.Hour
)

// TwelveDataFetcher implements Fetcher against the Twelve Data REST API.
// The free tier allows 8 requests/minute, so every call goes through a token
// bucket; a circuit breaker stops hammering the API while it is down.
type TwelveDataFetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker

	mu    sync.Mutex
	cache map[string]cacheItem
}

type cacheItem struct {
	value   any
	expires time.Time
}

// NewTwelveDataFetcher creates a fetcher. baseURL is overridable for tests;
// empty means the public endpoint.
func NewTwelveDataFetcher(baseURL, apiKey string) *TwelveDataFetcher {
	if baseURL == "" {
		baseURL = "https://api.twelvedata.com"
	}
	settings := gobreaker.Settings{Name: "twelvedata", Timeout: time.Minute}
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}
	return &TwelveDataFetcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Minute/8), 8),
		breaker: gobreaker.NewCircuitBreaker(settings),
		cache:   make(map[string]cacheItem),
	}
}

func (f *TwelveDataFetcher) Name() string { return "twelvedata" }

// formatSymbol rewrites symbols the way Twelve Data expects: forex pairs
// carry a slash (XAUUSD -> XAU/USD), exchange suffixes are dropped.
func formatSymbol(symbol string) string {
	clean := strings.ToUpper(strings.TrimSpace(symbol))
	clean, _, _ = strings.Cut(clean, ".")
	clean, _, _ = strings.Cut(clean, ":")

	if strings.HasPrefix(clean, "XAU") {
		return "XAU/USD"
	}
	if len(clean) == 6 && !strings.Contains(clean, "/") {
		return clean[:3] + "/" + clean[3:]
	}
	if strings.HasSuffix(clean, "USDT") && !strings.Contains(clean, "/") {
		return strings.TrimSuffix(clean, "USDT") + "/USDT"
	}
	return clean
}

func (f *TwelveDataFetcher) cached(key string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.cache[key]
	if !ok || time.Now().After(item.expires) {
		return nil, false
	}
	return item.value, true
}

func (f *TwelveDataFetcher) store(key string, value any, ttl time.Duration) {
	f.mu.Lock()
	f.cache[key] = cacheItem{value: value, expires: time.Now().Add(ttl)}
	f.mu.Unlock()
}

// get performs one rate-limited, breaker-guarded API call.
func (f *TwelveDataFetcher) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params.Set("apikey", f.apiKey)
	u := fmt.Sprintf("%s/%s?%s", f.baseURL, endpoint, params.Encode())

	body, err := f.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("twelvedata fetch: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("twelvedata read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("twelvedata: status %d, body: %s", resp.StatusCode, string(data))
		}

		// The API reports errors inside a 200 response.
		var status struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &status); err == nil && status.Status == "error" {
			return nil, fmt.Errorf("twelvedata api error: %s", status.Message)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

func (f *TwelveDataFetcher) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	sym := formatSymbol(symbol)
	key := "quote:" + sym
	if v, ok := f.cached(key); ok {
		return v.(model.Quote), nil
	}

	body, err := f.get(ctx, "quote", url.Values{"symbol": {sym}})
	if err != nil {
		return model.Quote{}, err
	}

	var raw struct {
		Close string `json:"close"`
		Open  string `json:"open"`
		High  string `json:"high"`
		Low   string `json:"low"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.Quote{}, fmt.Errorf("decode quote: %w", err)
	}
	price, err := strconv.ParseFloat(raw.Close, 64)
	if err != nil {
		return model.Quote{}, fmt.Errorf("quote close %q: %w", raw.Close, err)
	}

	q := model.Quote{Symbol: symbol, Price: price}
	q.Open, _ = strconv.ParseFloat(raw.Open, 64)
	q.High, _ = strconv.ParseFloat(raw.High, 64)
	q.Low, _ = strconv.ParseFloat(raw.Low, 64)

	f.store(key, q, quoteTTL)
	return q, nil
}

func (f *TwelveDataFetcher) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	q, err := f.Quote(ctx, symbol)
	return q.Price, err
}

// indicator fetches a single-value indicator endpoint: the response carries
// a values array, newest first, keyed by the indicator name.
func (f *TwelveDataFetcher) indicator(ctx context.Context, endpoint, field, symbol, interval string, period int) (float64, error) {
	sym := formatSymbol(symbol)
	key := fmt.Sprintf("%s:%s:%d:%s", endpoint, sym, period, interval)
	if v, ok := f.cached(key); ok {
		return v.(float64), nil
	}

	params := url.Values{"symbol": {sym}, "interval": {interval}}
	if period > 0 {
		params.Set("time_period", strconv.Itoa(period))
	}
	body, err := f.get(ctx, endpoint, params)
	if err != nil {
		return 0, err
	}

	var raw struct {
		Values []map[string]string `json:"values"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if len(raw.Values) == 0 {
		return 0, fmt.Errorf("twelvedata: no %s values for %s", endpoint, sym)
	}
	value, err := strconv.ParseFloat(raw.Values[0][field], 64)
	if err != nil {
		return 0, fmt.Errorf("%s value %q: %w", endpoint, raw.Values[0][field], err)
	}

	f.store(key, value, indicatorTTL)
	return value, nil
}

func (f *TwelveDataFetcher) EMA(ctx context.Context, symbol string, period int, interval string) (float64, error) {
	return f.indicator(ctx, "ema", "ema", symbol, interval, period)
}

func (f *TwelveDataFetcher) RSI(ctx context.Context, symbol string, period int, interval string) (float64, error) {
	return f.indicator(ctx, "rsi", "rsi", symbol, interval, period)
}

func (f *TwelveDataFetcher) ADX(ctx context.Context, symbol string, period int, interval string) (float64, error) {
	return f.indicator(ctx, "adx", "adx", symbol, interval, period)
}

func (f *TwelveDataFetcher) MACD(ctx context.Context, symbol, interval string) (float64, error) {
	return f.indicator(ctx, "macd", "macd", symbol, interval, 0)
}

func (f *TwelveDataFetcher) ATR(ctx context.Context, symbol string, period int, interval string) (float64, error) {
	return f.indicator(ctx, "atr", "atr", symbol, interval, period)
}

// Series returns up to size bars for the interval, oldest first.
func (f *TwelveDataFetcher) Series(ctx context.Context, symbol, interval string, size int) ([]model.OHLCV, error) {
	sym := formatSymbol(symbol)
	body, err := f.get(ctx, "time_series", url.Values{
		"symbol":     {sym},
		"interval":   {interval},
		"outputsize": {strconv.Itoa(size)},
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Values []struct {
			Datetime string `json:"datetime"`
			Open     string `json:"open"`
			High     string `json:"high"`
			Low      string `json:"low"`
			Close    string `json:"close"`
			Volume   string `json:"volume"`
		} `json:"values"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode time_series: %w", err)
	}
	if len(raw.Values) == 0 {
		return nil, fmt.Errorf("twelvedata: no bars for %s", sym)
	}

	// API order is newest first; reverse to chronological.
	bars := make([]model.OHLCV, 0, len(raw.Values))
	for i := len(raw.Values) - 1; i >= 0; i-- {
		v := raw.Values[i]
		var bar model.OHLCV
		bar.Time, _ = time.Parse("2006-01-02 15:04:05", v.Datetime)
		if bar.Time.IsZero() {
			bar.Time, _ = time.Parse("2006-01-02", v.Datetime)
		}
		bar.Open, _ = strconv.ParseFloat(v.Open, 64)
		bar.High, _ = strconv.ParseFloat(v.High, 64)
		bar.Low, _ = strconv.ParseFloat(v.Low, 64)
		bar.Close, _ = strconv.ParseFloat(v.Close, 64)
		bar.Volume, _ = strconv.ParseFloat(v.Volume, 64)
		bars = append(bars, bar)
	}
	return bars, nil
}

// trendDeadBandPct keeps tiny drifts from reading as a direction.
const trendDeadBandPct = 0.001

// Trend classifies an interval's bias from its recent closes.
func (f *TwelveDataFetcher) Trend(ctx context.Context, symbol, interval string) (model.TrendLabel, error) {
	sym := formatSymbol(symbol)
	key := "trend:" + sym + ":" + interval
	if v, ok := f.cached(key); ok {
		return v.(model.TrendLabel), nil
	}

	bars, err := f.Series(ctx, symbol, interval, 5)
	if err != nil {
		return model.TrendNeutral, err
	}

	first, last := bars[0].Close, bars[len(bars)-1].Close
	label := model.TrendNeutral
	switch {
	case first <= 0:
	case last > first*(1+trendDeadBandPct):
		label = model.TrendBullish
	case last < first*(1-trendDeadBandPct):
		label = model.TrendBearish
	}

	f.store(key, label, trendTTL)
	log.Debug().Str("symbol", sym).Str("interval", interval).
		Str("trend", string(label)).Msg("trend classified")
	return label, nil
}

package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"coincheck_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type tickerResponse struct {
	Last      Number `json:"last"`
	Bid       Number `json:"bid"`
	Ask       Number `json:"ask"`
	High      Number `json:"high"`
	Low       Number `json:"low"`
	Volume    Number `json:"volume"`
	Timestamp int64  `json:"timestamp"`
}

// Ticker returns the current public ticker of pair.
func (c *Client) Ticker(ctx context.Context, pair string) (models.Ticker, error) {
	status, rb, err := c.do(ctx, http.MethodGet, "/api/ticker?pair="+url.QueryEscape(pair), nil, false)
	if err != nil {
		return models.Ticker{}, err
	}
	if status/100 != 2 {
		return models.Ticker{}, fmt.Errorf("coincheck ticker %s: http %d: %s", pair, status, string(rb))
	}

	var resp tickerResponse
	if err := sonic.Unmarshal(rb, &resp); err != nil {
		return models.Ticker{}, errors.Wrapf(err, "coincheck ticker %s: decode", pair)
	}
	ts := c.now().UTC()
	if resp.Timestamp > 0 {
		ts = time.Unix(resp.Timestamp, 0).UTC()
	}
	return models.Ticker{
		Pair:      pair,
		Last:      resp.Last.Float(),
		Bid:       resp.Bid.Float(),
		Ask:       resp.Ask.Float(),
		High:      resp.High.Float(),
		Low:       resp.Low.Float(),
		Volume:    resp.Volume.Float(),
		Timestamp: ts,
	}, nil
}

type rateResponse struct {
	Success bool   `json:"success"`
	Rate    Number `json:"rate"`
	Error   string `json:"error"`
}

// Rate quotes the current buy and sell rate of pair for an amount of 1.
func (c *Client) Rate(ctx context.Context, pair string) (models.Rate, error) {
	buy, err := c.orderRate(ctx, pair, models.SideBuy)
	if err != nil {
		return models.Rate{}, err
	}
	sell, err := c.orderRate(ctx, pair, models.SideSell)
	if err != nil {
		return models.Rate{}, err
	}

	r := models.Rate{Pair: pair, BuyRate: buy, SellRate: sell}
	if sell != 0 {
		r.SpreadRatio = (buy - sell) / sell * 100
	}
	return r, nil
}

func (c *Client) orderRate(ctx context.Context, pair string, side models.Side) (float64, error) {
	q := url.Values{}
	q.Set("pair", pair)
	q.Set("order_type", string(side))
	q.Set("amount", "1")

	status, rb, err := c.do(ctx, http.MethodGet, "/api/exchange/orders/rate?"+q.Encode(), nil, false)
	if err != nil {
		return 0, err
	}
	if status/100 != 2 {
		return 0, fmt.Errorf("coincheck rate %s %s: http %d: %s", pair, side, status, string(rb))
	}

	var resp rateResponse
	if err := sonic.Unmarshal(rb, &resp); err != nil {
		return 0, errors.Wrapf(err, "coincheck rate %s %s: decode", pair, side)
	}
	if resp.Rate.Float() <= 0 {
		return 0, fmt.Errorf("coincheck rate %s %s: empty rate: %s", pair, side, resp.Error)
	}
	return resp.Rate.Float(), nil
}

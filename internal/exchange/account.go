package exchange

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"coincheck_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	jpyPlaces    = 0
	cryptoPlaces = 8
)

// Balances returns every balance key of the account, including sub-accounts
// such as "btc_reserved". Use models.Balances helpers to pick what matters.
func (c *Client) Balances(ctx context.Context) (models.Balances, error) {
	status, rb, err := c.do(ctx, http.MethodGet, "/api/accounts/balance", nil, true)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("coincheck balance: http %d: %s", status, string(rb))
	}

	var raw map[string]any
	if err := sonic.Unmarshal(rb, &raw); err != nil {
		return nil, errors.Wrap(err, "coincheck balance: decode")
	}
	if ok, _ := raw["success"].(bool); !ok {
		return nil, fmt.Errorf("coincheck balance: %v", raw["error"])
	}

	out := make(models.Balances, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				continue
			}
			out[k] = f
		case float64:
			out[k] = val
		}
	}
	return out, nil
}

type orderRequest struct {
	Pair            string           `json:"pair"`
	OrderType       models.OrderType `json:"order_type"`
	MarketBuyAmount *decimal.Decimal `json:"market_buy_amount,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
}

type orderResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// PostMarketOrder submits a market order. For a buy amount is JPY, for a sell it
// is the crypto quantity. A non-2xx answer is returned as a result, not an error:
// errors mean the request never produced an answer. No retries.
func (c *Client) PostMarketOrder(ctx context.Context, pair string, side models.Side, amount float64) (models.OrderResult, error) {
	req := orderRequest{Pair: pair}
	switch side {
	case models.SideBuy:
		v := decimal.NewFromFloat(amount).Truncate(jpyPlaces)
		req.OrderType, req.MarketBuyAmount = models.MarketBuy, &v
	case models.SideSell:
		v := decimal.NewFromFloat(amount).Truncate(cryptoPlaces)
		req.OrderType, req.Amount = models.MarketSell, &v
	default:
		return models.OrderResult{}, fmt.Errorf("coincheck order %s: unknown side %q", pair, side)
	}

	body, err := sonic.Marshal(req)
	if err != nil {
		return models.OrderResult{}, errors.Wrapf(err, "coincheck order %s: encode", pair)
	}
	status, rb, err := c.do(ctx, http.MethodPost, "/api/exchange/orders", body, true)
	if err != nil {
		return models.OrderResult{}, err
	}

	res := models.OrderResult{StatusCode: status, Body: string(rb)}
	var parsed orderResponse
	if sonic.Unmarshal(rb, &parsed) == nil {
		res.Error = parsed.Error
	}
	return res, nil
}

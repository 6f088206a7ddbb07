package domain

import (
	"fmt"
	"strings"
)

// TradeDirection represents the proposed trade direction
type TradeDirection string

const (
	DirectionBuy  TradeDirection = "BUY"
	DirectionSell TradeDirection = "SELL"
	// DirectionHold is only ever emitted by the engine, never proposed.
	DirectionHold TradeDirection = "HOLD"
)

// IsValid checks if the direction is a tradable one
func (d TradeDirection) IsValid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// IsBuy returns true for BUY
func (d TradeDirection) IsBuy() bool {
	return d == DirectionBuy
}

// TradeDirectionFromString creates a TradeDirection from a string (case-insensitive)
func TradeDirectionFromString(value string) (TradeDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "BUY":
		return DirectionBuy, nil
	case "SELL":
		return DirectionSell, nil
	default:
		return "", fmt.Errorf("invalid trade direction: %q", value)
	}
}

// OrderKind represents how the order enters the market
type OrderKind string

const (
	OrderMarket OrderKind = "MARKET"
	OrderLimit  OrderKind = "LIMIT"
	OrderStop   OrderKind = "STOP"
)

// IsPending returns true for order kinds that rest on the book before filling
func (k OrderKind) IsPending() bool {
	return k == OrderLimit || k == OrderStop
}

// Terminal order action codes, mirroring MT5 values for interoperability.
const (
	ActionBuy       = 0
	ActionSell      = 1
	ActionBuyLimit  = 2
	ActionSellLimit = 3
	ActionBuyStop   = 4
	ActionSellStop  = 5
)

// Action maps a direction and order kind to the terminal action code.
// Unknown combinations fall back to a plain BUY, matching the execution
// layer's safe default.
func Action(direction TradeDirection, kind OrderKind) int {
	switch direction {
	case DirectionBuy:
		switch kind {
		case OrderLimit:
			return ActionBuyLimit
		case OrderStop:
			return ActionBuyStop
		default:
			return ActionBuy
		}
	case DirectionSell:
		switch kind {
		case OrderLimit:
			return ActionSellLimit
		case OrderStop:
			return ActionSellStop
		default:
			return ActionSell
		}
	}
	return ActionBuy
}

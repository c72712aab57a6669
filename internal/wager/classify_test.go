package wager

import (
	"net/http"
	"testing"
)

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   OutcomeCode
	}{
		{
			"nested accepted status",
			http.StatusOK,
			`{"result":{"response":{"place_picks_operation_status":{"status":8301}}}}`,
			OutcomeAccepted,
		},
		{
			"accepted status beats error text elsewhere",
			http.StatusOK,
			`{"result":{"response":{"place_picks_operation_status":{"status":8301}}},"error":{"message":"price has changed"}}`,
			OutcomeAccepted,
		},
		{
			"accepted regardless of http status text",
			http.StatusBadRequest,
			`{"result":{"response":{"place_picks_operation_status":{"status":8301}}}}`,
			OutcomeAccepted,
		},
		{
			"shallow accepted status",
			http.StatusOK,
			`{"status":8302}`,
			OutcomeAccepted,
		},
		{
			"http unauthorized wins over body",
			http.StatusUnauthorized,
			`{"result":{"response":{"place_picks_operation_status":{"status":8301}}}}`,
			OutcomeUnauthorized,
		},
		{
			"http forbidden",
			http.StatusForbidden,
			``,
			OutcomeUnauthorized,
		},
		{
			"insufficient funds",
			http.StatusOK,
			`{"error":{"message":"Insufficient funds for this pick"}}`,
			OutcomeInsufficientFunds,
		},
		{
			"market unavailable",
			http.StatusOK,
			`{"result":{"error":{"message":"Market is unavailable"}}}`,
			OutcomeMarketUnavailable,
		},
		{
			"event unavailable",
			http.StatusOK,
			`{"error_message":"Event has ended"}`,
			OutcomeEventUnavailable,
		},
		{
			"token error in body",
			http.StatusOK,
			`{"error":{"message":"Invalid token, please sign in"}}`,
			OutcomeUnauthorized,
		},
		{
			"price change phrasing",
			http.StatusOK,
			`{"error":{"message":"The price has changed since you built your cart"}}`,
			OutcomePriceChanged,
		},
		{
			"odds phrasing",
			http.StatusOK,
			`{"result":{"error_message":"odds no longer available"}}`,
			OutcomePriceChanged,
		},
		{
			"unknown error text",
			http.StatusOK,
			`{"error":{"message":"unexpected internal condition"}}`,
			OutcomeFailed,
		},
		{
			"2xx with no error indicator",
			http.StatusOK,
			`{"result":{"tracking_id":"abc"}}`,
			OutcomeAccepted,
		},
		{
			"2xx empty body",
			http.StatusNoContent,
			``,
			OutcomeAccepted,
		},
		{
			"server error without body",
			http.StatusInternalServerError,
			``,
			OutcomeFailed,
		},
		{
			"non-json body on 500",
			http.StatusInternalServerError,
			`<html>bad gateway</html>`,
			OutcomeFailed,
		},
	}

	for _, tt := range tests {
		out := Classify(tt.status, []byte(tt.body))
		if out.Code != tt.want {
			t.Errorf("%s: Classify(%d) = %s, want %s", tt.name, tt.status, out.Code, tt.want)
		}
		if string(out.Raw) != tt.body {
			t.Errorf("%s: raw payload not retained", tt.name)
		}
	}
}

func TestOutcomeRetryable(t *testing.T) {
	tests := []struct {
		code OutcomeCode
		want bool
	}{
		{OutcomeAccepted, false},
		{OutcomePriceChanged, true},
		{OutcomeFailed, true},
		{OutcomeInsufficientFunds, false},
		{OutcomeMarketUnavailable, false},
		{OutcomeEventUnavailable, false},
		{OutcomeUnauthorized, false},
	}
	for _, tt := range tests {
		if got := tt.code.Retryable(); got != tt.want {
			t.Errorf("%s.Retryable() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestClassifyPageText(t *testing.T) {
	tests := []struct {
		text string
		want OutcomeCode
	}{
		{"Your pick submitted! Good luck.", OutcomeAccepted},
		{"Heads up: the price has changed.", OutcomePriceChanged},
		{"Insufficient balance. Add funds to continue.", OutcomeInsufficientFunds},
		{"Welcome back", OutcomeFailed},
	}
	for _, tt := range tests {
		if got := ClassifyPageText(tt.text); got != tt.want {
			t.Errorf("ClassifyPageText(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

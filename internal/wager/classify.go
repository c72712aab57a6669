package wager

import (
	"encoding/json"
	"net/http"
	"strings"
)

// OutcomeCode is the normalized classification of one submission
// result. Each code drives a distinct retry policy.
type OutcomeCode int

const (
	// OutcomeAccepted: provider confirmed the wager.
	OutcomeAccepted OutcomeCode = iota
	// OutcomePriceChanged: resubmittable with a fresh price.
	OutcomePriceChanged
	// OutcomeUnauthorized: session needs credential refresh.
	OutcomeUnauthorized
	// OutcomeInsufficientFunds: session excluded for the run.
	OutcomeInsufficientFunds
	// OutcomeMarketUnavailable: market excluded, session kept.
	OutcomeMarketUnavailable
	// OutcomeEventUnavailable: no retry.
	OutcomeEventUnavailable
	// OutcomeFailed: generic failure, bounded retries allowed.
	OutcomeFailed
)

// String returns the code's wire name.
func (c OutcomeCode) String() string {
	switch c {
	case OutcomeAccepted:
		return "accepted"
	case OutcomePriceChanged:
		return "price_changed"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeInsufficientFunds:
		return "insufficient_funds"
	case OutcomeMarketUnavailable:
		return "market_unavailable"
	case OutcomeEventUnavailable:
		return "event_unavailable"
	default:
		return "failed"
	}
}

// Retryable reports whether the caller may retry after this outcome.
func (c OutcomeCode) Retryable() bool {
	return c == OutcomePriceChanged || c == OutcomeFailed
}

// Outcome is a classified submission result plus the raw provider
// payload for diagnostics.
type Outcome struct {
	Code   OutcomeCode
	Detail string
	Raw    json.RawMessage
}

// Numeric operation statuses the provider uses for an accepted pick.
var acceptedStatuses = map[int64]struct{}{
	8301: {},
	8302: {},
}

// Paths at which the operation status has been observed. The provider
// moves it between releases, so every known depth is probed.
var statusPaths = [][]string{
	{"result", "response", "place_picks_operation_status", "status"},
	{"result", "place_picks_operation_status", "status"},
	{"place_picks_operation_status", "status"},
	{"result", "status"},
	{"status"},
}

// Paths at which an embedded error message has been observed.
var errorMessagePaths = [][]string{
	{"result", "error", "message"},
	{"error", "message"},
	{"result", "error_message"},
	{"error_message"},
}

// Classify normalizes one provider response into an Outcome. The
// precedence order is fixed: transport-level auth, explicit accepted
// status, embedded error text, then the 2xx default.
func Classify(httpStatus int, body []byte) Outcome {
	out := Outcome{Raw: body}

	if httpStatus == http.StatusUnauthorized || httpStatus == http.StatusForbidden {
		out.Code = OutcomeUnauthorized
		out.Detail = http.StatusText(httpStatus)
		return out
	}

	var parsed map[string]any
	if len(body) > 0 {
		_ = json.Unmarshal(body, &parsed)
	}

	if status, ok := findStatus(parsed); ok {
		if _, accepted := acceptedStatuses[status]; accepted {
			out.Code = OutcomeAccepted
			return out
		}
	}

	if msg, ok := findErrorMessage(parsed); ok {
		out.Code = classifyMessage(msg)
		out.Detail = msg
		return out
	}

	if httpStatus >= 200 && httpStatus < 300 {
		// No error indicator on a 2xx is success by provider contract.
		out.Code = OutcomeAccepted
		return out
	}

	out.Code = OutcomeFailed
	out.Detail = http.StatusText(httpStatus)
	return out
}

// classifyMessage maps known provider error phrasings onto the
// taxonomy. Unknown text is a generic failure.
func classifyMessage(msg string) OutcomeCode {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, "insufficient", "not enough funds", "balance too low"):
		return OutcomeInsufficientFunds
	case containsAny(lower, "market is unavailable", "market unavailable", "market is closed", "market suspended"):
		return OutcomeMarketUnavailable
	case containsAny(lower, "event is unavailable", "event unavailable", "event has ended", "event is over"):
		return OutcomeEventUnavailable
	case containsAny(lower, "unauthorized", "session expired", "invalid token", "please sign in"):
		return OutcomeUnauthorized
	case containsAny(lower, "price", "odds", "coeff", "line has moved"):
		return OutcomePriceChanged
	default:
		return OutcomeFailed
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func findStatus(parsed map[string]any) (int64, bool) {
	for _, path := range statusPaths {
		if v, ok := lookupPath(parsed, path); ok {
			switch n := v.(type) {
			case float64:
				return int64(n), true
			case json.Number:
				if i, err := n.Int64(); err == nil {
					return i, true
				}
			}
		}
	}
	return 0, false
}

func findErrorMessage(parsed map[string]any) (string, bool) {
	for _, path := range errorMessagePaths {
		if v, ok := lookupPath(parsed, path); ok {
			if s, isStr := v.(string); isStr && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func lookupPath(m map[string]any, path []string) (any, bool) {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

package wager

import (
	"net/http"
	"reflect"
	"testing"
	"time"
)

const capturedBody = `{
	"header": {"conn_seq": 3, "auth_token": "captured-token", "platform": "ios", "region": "us-oh"},
	"invocation": {"request": {
		"cart_id": "seed-cart",
		"currency_mode": "cash",
		"verify_mode": false,
		"picks": [{
			"risk_amount": 100,
			"expected_payout_amount": 191,
			"selections": [{"proposal_fkey": "501_p_399_inplay", "coeff": -110}]
		}]
	}}
}`

func captured(t *testing.T) *RequestTemplate {
	t.Helper()
	tpl, err := ParseTemplate("https://api.example.com/place_picks", http.Header{}, []byte(capturedBody))
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	return tpl
}

func lookupBodyPath(body map[string]any, path []string) (any, bool) {
	var cur any = body
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur = m[key]
	}
	return cur, cur != nil
}

func pick(t *testing.T, tpl *RequestTemplate) map[string]any {
	t.Helper()
	p := pathSlice0(tpl.Body, "invocation", "request", "picks")
	if p == nil {
		t.Fatalf("body has no picks")
	}
	return p
}

func TestCloneIsDeep(t *testing.T) {
	tpl := captured(t)
	clone := tpl.Clone()
	clone.CustomizeLocked(5000, 9545, "new-token", 7)

	if got := pick(t, tpl)["risk_amount"]; got != float64(100) {
		t.Errorf("customizing a clone mutated the original: risk_amount = %v", got)
	}
}

func TestLockedReplayTouchesOnlyAllowedFields(t *testing.T) {
	cache := NewTemplateCache(time.Hour)
	cache.Put("501_p_399_inplay", captured(t))

	first, ok := cache.Get("501_p_399_inplay")
	if !ok {
		t.Fatalf("locked template missing")
	}
	first.CustomizeLocked(5000, 9545, "live-token", 10)

	second, _ := cache.Get("501_p_399_inplay")
	second.CustomizeLocked(20000, 38182, "live-token", 11)

	// Price and identifier replay exactly as captured.
	for _, tpl := range []*RequestTemplate{first, second} {
		sel := slice0(pick(t, tpl)["selections"])
		if sel["coeff"] != float64(-110) || sel["proposal_fkey"] != "501_p_399_inplay" {
			t.Errorf("locked replay changed selection: %+v", sel)
		}
	}

	// The only differences between the two bodies: stake, payout,
	// cart id, sequence number.
	p1, p2 := pick(t, first), pick(t, second)
	if p1["risk_amount"] == p2["risk_amount"] || p2["risk_amount"] != int64(20000) {
		t.Errorf("risk_amount = %v / %v", p1["risk_amount"], p2["risk_amount"])
	}
	if p2["expected_payout_amount"] != int64(38182) {
		t.Errorf("expected_payout_amount = %v", p2["expected_payout_amount"])
	}

	cart1, _ := lookupBodyPath(first.Body, []string{"invocation", "request", "cart_id"})
	cart2, _ := lookupBodyPath(second.Body, []string{"invocation", "request", "cart_id"})
	if cart1 == cart2 || cart1 == "seed-cart" {
		t.Errorf("cart ids must be fresh per submission: %v / %v", cart1, cart2)
	}

	seq2, _ := lookupBodyPath(second.Body, []string{"header", "conn_seq"})
	if seq2 != int64(11) {
		t.Errorf("conn_seq = %v, want 11", seq2)
	}
	tok, _ := lookupBodyPath(second.Body, []string{"header", "auth_token"})
	if tok != "live-token" {
		t.Errorf("live token must overwrite captured one, got %v", tok)
	}

	// Untouched provider fields replay verbatim.
	for _, path := range [][]string{
		{"header", "platform"},
		{"header", "region"},
		{"invocation", "request", "currency_mode"},
		{"invocation", "request", "verify_mode"},
	} {
		v1, _ := lookupBodyPath(first.Body, path)
		v2, _ := lookupBodyPath(second.Body, path)
		if !reflect.DeepEqual(v1, v2) {
			t.Errorf("field %v drifted between replays: %v vs %v", path, v1, v2)
		}
	}
}

func TestCustomizeRewritesSelection(t *testing.T) {
	tpl := captured(t)
	tpl.Customize(5000, 11000, 120, "602_p_7_inplay", "live-token", 4)

	sel := slice0(pick(t, tpl)["selections"])
	if sel["proposal_fkey"] != "602_p_7_inplay" || sel["coeff"] != 120 {
		t.Errorf("Customize selection = %+v", sel)
	}
}

func TestTemplateCacheTTL(t *testing.T) {
	cache := NewTemplateCache(time.Minute)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Put("id1", captured(t))
	if _, ok := cache.Get("id1"); !ok {
		t.Fatalf("fresh template missing")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("id1"); ok {
		t.Errorf("expired template still served")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry not pruned, len = %d", cache.Len())
	}
}

func TestTemplateCacheInvalidate(t *testing.T) {
	cache := NewTemplateCache(0)
	cache.Put("id1", captured(t))
	cache.Invalidate("id1")

	if _, ok := cache.Get("id1"); ok {
		t.Errorf("invalidated template still served")
	}
}

func TestTemplateCacheLastWriteWins(t *testing.T) {
	cache := NewTemplateCache(0)

	a := captured(t)
	cache.Put("id1", a)

	b := captured(t)
	b.Body["marker"] = "second"
	cache.Put("id1", b)

	got, _ := cache.Get("id1")
	if got.Body["marker"] != "second" {
		t.Errorf("last write must win, got %v", got.Body["marker"])
	}
}

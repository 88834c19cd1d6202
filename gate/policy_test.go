package gate

import (
	"reflect"
	"testing"
)

func TestPolicy_Classify(t *testing.T) {
	p := DefaultPolicy()
	tests := map[string]EndpointClass{
		"/metrics":   ClassMetrics,
		"/metrics/":  ClassGeneral,
		"/Metrics":   ClassGeneral,
		"/api/foo":   ClassGeneral,
		"/":          ClassGeneral,
		"":           ClassGeneral,
		"/x/metrics": ClassGeneral,
	}
	for path, want := range tests {
		if got := p.Classify(path); got != want {
			t.Errorf("Classify(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestPolicy_Rule(t *testing.T) {
	p := DefaultPolicy()
	if got := p.Rule(ClassMetrics).Message; got != MetricsDenyMessage {
		t.Errorf("metrics message = %q", got)
	}
	if got := p.Rule(ClassGeneral).Message; got != GeneralDenyMessage {
		t.Errorf("general message = %q", got)
	}
	if got := p.Rule("unknown").Message; got != GeneralDenyMessage {
		t.Errorf("unknown class message = %q", got)
	}
	if got := (Policy{}).Rule(ClassMetrics).Message; got != GeneralDenyMessage {
		t.Errorf("zero policy message = %q", got)
	}
}

func TestPolicy_WithScopeCopies(t *testing.T) {
	base := DefaultPolicy()
	scoped := base.WithScope(ClassMetrics, "metrics")

	if base.Rule(ClassMetrics).RequiredScope != "" {
		t.Error("WithScope mutated the receiver")
	}
	if got := scoped.Rule(ClassMetrics); got.RequiredScope != "metrics" || got.Message != MetricsDenyMessage {
		t.Errorf("scoped rule = %+v", got)
	}
	if got, want := scoped.RequiredScopes(), map[string]string{"metrics": "metrics"}; !reflect.DeepEqual(got, want) {
		t.Errorf("RequiredScopes() = %v, want %v", got, want)
	}
	if got := base.RequiredScopes(); len(got) != 0 {
		t.Errorf("default RequiredScopes() = %v, want none", got)
	}
}

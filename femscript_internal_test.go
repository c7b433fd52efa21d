package femscript

import (
	"reflect"
	"testing"

	"github.com/femscript-lang/femscript/engine"
)

func TestAdoptReplacesBindings(t *testing.T) {
	s := &Script{modules: make(map[string]*module)}
	s.AddVariable("a", 1)

	var final engine.Scope
	final.Set("b", engine.NewInt(2))
	s.adopt(final)

	// Total replacement: "a" was bound before and is gone afterward.
	if !reflect.DeepEqual(s.Variables().Keys(), []string{"b"}) {
		t.Errorf("keys = %v, want [b]", s.Variables().Keys())
	}
}

func TestResolvedLastWinsKeepsPosition(t *testing.T) {
	s := &Script{modules: make(map[string]*module)}
	s.Register("a", func(Call) (any, error) { return nil, nil })
	s.Register("b", func(Call) (any, error) { return nil, nil })
	s.Register("a", func(Call) (any, error) { return "late", nil })

	fns := s.resolved()
	if len(fns) != 2 {
		t.Fatalf("len = %d, want 2", len(fns))
	}
	if fns[0].Name != "a" || fns[1].Name != "b" {
		t.Errorf("order = [%s %s], want [a b]", fns[0].Name, fns[1].Name)
	}
}

package wakfulog

import "testing"

func TestCompiledFilter_Nil(t *testing.T) {
	var f *compiledFilter
	if !f.Allows("anything") {
		t.Error("nil filter must allow everything")
	}
}

func TestCompiledFilter_Include(t *testing.T) {
	f := newCompiledFilter([]string{"spell_cast", "damage"}, nil)

	if !f.Allows("spell_cast") {
		t.Error("included kind rejected")
	}
	if f.Allows("turn_end") {
		t.Error("non-included kind allowed")
	}
}

func TestCompiledFilter_Exclude(t *testing.T) {
	f := newCompiledFilter(nil, []string{"damage"})

	if f.Allows("damage") {
		t.Error("excluded kind allowed")
	}
	if !f.Allows("spell_cast") {
		t.Error("non-excluded kind rejected")
	}
}

func TestCompiledFilter_ExcludeWins(t *testing.T) {
	f := newCompiledFilter([]string{"damage"}, []string{"damage"})

	if f.Allows("damage") {
		t.Error("exclude must take precedence over include")
	}
}

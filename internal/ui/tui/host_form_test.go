package tui

import (
	"strings"
	"testing"
)

func TestHostFormModel_Submit(t *testing.T) {
	m := NewHostFormModel("", "")

	got, cmd := press(m, typeText("ipad"), keyEnter, typeText("10.0.0.2"), keyEnter)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	res := got.(HostFormModel).Result()
	if !res.Submitted || res.Name != "ipad" || res.Address != "10.0.0.2" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestHostFormModel_PrefilledNameFocusesAddress(t *testing.T) {
	m := NewHostFormModel("ipad", "")
	if m.focus != fieldAddress {
		t.Fatalf("expected address focus, got %d", m.focus)
	}

	got, _ := press(m, typeText("10.0.0.2"), keyEnter)
	res := got.(HostFormModel).Result()
	if !res.Submitted || res.Name != "ipad" || res.Address != "10.0.0.2" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestHostFormModel_RequiresBothFields(t *testing.T) {
	m := NewHostFormModel("", "")

	got, cmd := press(m, keyTab, typeText("10.0.0.2"), keyEnter)
	if cmd != nil {
		t.Error("form should not quit with an empty name")
	}
	fm := got.(HostFormModel)
	if fm.Result().Submitted {
		t.Error("form should not submit")
	}
	if fm.focus != fieldName {
		t.Errorf("focus should return to name, got %d", fm.focus)
	}
	if !strings.Contains(fm.View(), "name cannot be empty") {
		t.Errorf("expected validation message in view, got %q", fm.View())
	}

	got, _ = press(fm, typeText("ipad"), keyEnter, keyEnter)
	if res := got.(HostFormModel).Result(); !res.Submitted || res.Name != "ipad" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestHostFormModel_TrimsInput(t *testing.T) {
	m := NewHostFormModel("  ipad ", " 10.0.0.2 ")
	got, _ := press(m, keyEnter)
	res := got.(HostFormModel).Result()
	if res.Name != "ipad" || res.Address != "10.0.0.2" {
		t.Errorf("expected trimmed values, got %+v", res)
	}
}

func TestHostFormModel_Cancel(t *testing.T) {
	m := NewHostFormModel("ipad", "")
	got, cmd := press(m, typeText("10.0"), keyEsc)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if got.(HostFormModel).Result().Submitted {
		t.Error("cancel should not submit")
	}
	if got.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

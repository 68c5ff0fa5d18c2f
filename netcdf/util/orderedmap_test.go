package util

import (
	"testing"
)

func TestNil(t *testing.T) {
	_, err := NewOrderedMap[any](nil, nil)
	if err != nil {
		t.Error(err)
		return
	}
	_, err = NewOrderedMap(nil, map[string]any{})
	if err != nil {
		t.Error(err)
		return
	}
	_, err = NewOrderedMap[any]([]string{}, nil)
	if err != nil {
		t.Error(err)
		return
	}
}

func TestMismatchedLength(t *testing.T) {
	_, err := NewOrderedMap([]string{"a", "b"},
		map[string]any{"a": nil})
	if err != ErrorKeysDontMatchValues {
		t.Error("Should have returned an error")
		return
	}
}

func TestHidden(t *testing.T) {
	om, err := NewOrderedMap([]string{"a", "b"},
		map[string]int{"a": 0, "b": 0})
	if err != nil {
		t.Error(err)
		return
	}
	om.Hide("a")
	keys := om.Keys()
	if len(keys) != 1 || keys[0] != "b" {
		t.Error("Hide() failed")
		return
	}
	om.Add("a", 1)
	keys = om.Keys()
	if len(keys) != 1 || keys[0] != "b" {
		t.Error("Hide() failed")
		return
	}
	if v, has := om.Get("a"); !has || v != 1 {
		t.Error("hidden key should still be retrievable")
	}
	om.Hide("c")
	om.Add("c", 3)
	if om.Len() != 1 || len(om.AllKeys()) != 3 {
		t.Error("wrong counts", om.Len(), om.AllKeys())
	}
}

func TestMismatchedKeys(t *testing.T) {
	_, err := NewOrderedMap([]string{"a", "b"},
		map[string]any{"a": nil, "c": nil})
	if err != ErrorKeysDontMatchValues {
		t.Error("Should have returned an error")
		return
	}
}

func TestReplaceKeepsOrder(t *testing.T) {
	om := Empty[string]()
	om.Add("x", "1")
	om.Add("y", "2")
	om.Add("x", "3")
	keys := om.Keys()
	if len(keys) != 2 || keys[0] != "x" || keys[1] != "y" {
		t.Error("bad keys", keys)
		return
	}
	vals := om.Values()
	if vals[0] != "3" || vals[1] != "2" {
		t.Error("bad values", vals)
	}
}

func TestDelete(t *testing.T) {
	om := Empty[int]()
	for i, k := range []string{"a", "b", "c", "d"} {
		om.Add(k, i)
	}
	if !om.Delete("b") {
		t.Error("delete failed")
		return
	}
	if om.Delete("b") {
		t.Error("second delete should fail")
		return
	}
	keys := om.Keys()
	exp := []string{"a", "c", "d"}
	if len(keys) != len(exp) {
		t.Error("bad keys", keys)
		return
	}
	for i := range exp {
		if keys[i] != exp[i] {
			t.Error("bad keys", keys)
			return
		}
	}
	om.Add("b", 9)
	if om.Keys()[3] != "b" {
		t.Error("re-added key should go last", om.Keys())
	}
}

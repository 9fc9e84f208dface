package models

import "testing"

func TestDefaultMoods_Order(t *testing.T) {
	want := []string{"😊", "😢", "😐", "🤩", "😴", "😠", "😌", "🤔"}
	got := DefaultMoods()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, m := range got {
		if m.Emoji != want[i] {
			t.Errorf("moods[%d] = %q, want %q", i, m.Emoji, want[i])
		}
	}
}

func TestMoodSet_Label(t *testing.T) {
	s := DefaultMoods()
	if l, ok := s.Label("🤔"); !ok || l != "Thoughtful" {
		t.Errorf("Label(🤔) = %q, %v", l, ok)
	}
	if l, ok := s.Label("🦄"); ok || l != "" {
		t.Errorf("Label(🦄) = %q, %v, want empty/false", l, ok)
	}
}

func TestMoodSet_DisplayLabel(t *testing.T) {
	s := DefaultMoods()
	cases := []struct {
		emoji, stored, want string
	}{
		{"😊", "Joyful", "Happy"},
		{"🦄", "Magical", "Magical"},
		{"🦄", "", ""},
	}
	for _, c := range cases {
		if got := s.DisplayLabel(c.emoji, c.stored); got != c.want {
			t.Errorf("DisplayLabel(%q, %q) = %q, want %q", c.emoji, c.stored, got, c.want)
		}
	}
}

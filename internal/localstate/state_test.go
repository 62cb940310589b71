package localstate

import "testing"

func TestSaveLoadClear(t *testing.T) {
	s := New(t.TempDir())

	if err := s.Save("ayse"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "ayse" {
		t.Errorf("Load() = %q, want ayse", got)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = s.Load()
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if got != "" {
		t.Errorf("Load() after clear = %q, want empty", got)
	}
}

func TestLoadWithoutSession(t *testing.T) {
	s := New(t.TempDir())

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "" {
		t.Errorf("Load() = %q, want empty", got)
	}
}

func TestClearWithoutSession(t *testing.T) {
	s := New(t.TempDir())

	if err := s.Clear(); err != nil {
		t.Errorf("clear on absent session should be a no-op, got %v", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := New(t.TempDir())

	if err := s.Save("ayse"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save("mehmet"); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, _ := s.Load()
	if got != "mehmet" {
		t.Errorf("Load() = %q, want mehmet", got)
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hailam/chesszero/internal/network"
)

func TestLoadEvaluator(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.bin")
	m := network.NewModel()
	m.InitRandom(2)
	if err := m.Save(good); err != nil {
		t.Fatal(err)
	}
	corrupt := filepath.Join(dir, "corrupt.bin")
	if err := os.WriteFile(corrupt, []byte("not a model"), 0644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.bin")

	tests := []struct {
		name        string
		path        string
		defaultFile string
		wantErr     bool
		wantModel   bool
	}{
		{"explicit model", good, "", false, true},
		{"explicit missing file", missing, good, true, false},
		{"explicit corrupt file", corrupt, good, true, false},
		{"default model", "", good, false, true},
		{"default absent", "", missing, false, false},
		{"no data directory", "", "", false, false},
		{"default corrupt", "", corrupt, true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := loadEvaluator(tc.path, tc.defaultFile)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("got evaluator %T, want an error", ev)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			_, isModel := ev.(*network.Model)
			_, isUniform := ev.(network.Uniform)
			if isModel != tc.wantModel || isModel == isUniform {
				t.Errorf("got evaluator %T", ev)
			}
		})
	}
}

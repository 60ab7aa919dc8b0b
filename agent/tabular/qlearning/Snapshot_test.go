package qlearning

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	env "sfneuman.com/gridlearn/environment"
)

func TestSnapshotRoundTrip(t *testing.T) {
	e := specEnv{actions: 2, obsDims: 2, cardinality: env.Discrete}

	saved, err := New(e, testAgentConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}
	row := saved.Table().Row("0:1")
	row[0], row[1] = 1.5, -2
	saved.Table().Row("1:0")[1] = 7

	filename := filepath.Join(t.TempDir(), "agent.bin")
	if err := saved.Save(filename); err != nil {
		t.Fatal(err)
	}

	restored, err := New(e, testAgentConfig(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := restored.Restore(filename); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(saved.Table().Values(),
		restored.Table().Values()) {
		t.Errorf("restored values %v differ from saved values %v",
			restored.Table().Values(), saved.Table().Values())
	}
	if restored.Epsilon() != saved.Epsilon() {
		t.Errorf("restored epsilon %v differs from saved epsilon %v",
			restored.Epsilon(), saved.Epsilon())
	}
}

func TestRestoreRejectsDifferentDiscretization(t *testing.T) {
	e := specEnv{actions: 2, obsDims: 2, cardinality: env.Discrete}

	saved, err := New(e, testAgentConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}
	saved.Table().Row("0:0")[0] = 3

	filename := filepath.Join(t.TempDir(), "agent.bin")
	if err := saved.Save(filename); err != nil {
		t.Fatal(err)
	}

	// Same observation space, finer state bins: keys are incompatible
	config := testAgentConfig()
	config.StateBins = []int{3, 3}
	other, err := New(e, config, 1)
	if err != nil {
		t.Fatal(err)
	}

	err = other.Restore(filename)
	if !errors.Is(err, ErrSnapshotIncompatible) {
		t.Errorf("expected ErrSnapshotIncompatible, got %v", err)
	}
	if other.Table().States() != 0 {
		t.Error("a failed restore must leave the agent unchanged")
	}
}

func TestRestoreRejectsDifferentActionSpace(t *testing.T) {
	saved, err := New(specEnv{actions: 2, obsDims: 2,
		cardinality: env.Discrete}, testAgentConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}

	filename := filepath.Join(t.TempDir(), "agent.bin")
	if err := saved.Save(filename); err != nil {
		t.Fatal(err)
	}

	other, err := New(specEnv{actions: 3, obsDims: 2,
		cardinality: env.Discrete}, testAgentConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}

	if err := other.Restore(filename); !errors.Is(err,
		ErrSnapshotIncompatible) {
		t.Errorf("expected ErrSnapshotIncompatible, got %v", err)
	}
}

func TestRestoreMissingFile(t *testing.T) {
	q, err := New(specEnv{actions: 2, obsDims: 2,
		cardinality: env.Discrete}, testAgentConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}

	missing := filepath.Join(t.TempDir(), "missing.bin")
	if err := q.Restore(missing); err == nil {
		t.Error("expected error for a missing snapshot file")
	}
}

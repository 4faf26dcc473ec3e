package secret_test

import (
	"errors"
	"testing"

	"sanitycsv/internal/secret"
)

func TestEnvName(t *testing.T) {
	if got := secret.EnvName("sink:data-warehouse"); got != "SANITYCSV_SECRET_SINK_DATA_WAREHOUSE" {
		t.Fatalf("got %q", got)
	}
}

func TestEnvStore(t *testing.T) {
	t.Setenv("SANITYCSV_SECRET_SINK_PG", "hunter2")

	var s secret.EnvStore
	v, err := s.Get("sink:pg")
	if err != nil || string(v) != "hunter2" {
		t.Fatalf("Get = %q, %v", v, err)
	}
	v, err = s.Get("sink:missing")
	if err != nil || v != nil {
		t.Fatalf("missing = %q, %v", v, err)
	}
	if err := s.Set("sink:pg", []byte("x")); err == nil {
		t.Fatal("expected Set to fail")
	}
}

type failingStore struct{ secret.Memory }

func (failingStore) Get(string) ([]byte, error) { return nil, errors.New("locked") }

func TestChainStore(t *testing.T) {
	first := secret.Memory{"a": []byte("from-first")}
	last := secret.Memory{"a": []byte("shadowed"), "b": []byte("from-last")}
	chain := secret.ChainStore{first, last}

	if v, _ := chain.Get("a"); string(v) != "from-first" {
		t.Errorf("a = %q", v)
	}
	if v, _ := chain.Get("b"); string(v) != "from-last" {
		t.Errorf("b = %q", v)
	}
	if v, err := chain.Get("c"); v != nil || err != nil {
		t.Errorf("c = %q, %v", v, err)
	}

	if err := chain.Set("c", []byte("new")); err != nil {
		t.Fatal(err)
	}
	if string(last["c"]) != "new" || first["c"] != nil {
		t.Error("Set should write to the last store")
	}
	chain.Delete("b")
	if _, ok := last["b"]; ok {
		t.Error("Delete should remove from the last store")
	}
}

func TestChainStore_ErrorDoesNotHideHit(t *testing.T) {
	chain := secret.ChainStore{failingStore{}, secret.Memory{"k": []byte("v")}}
	if v, err := chain.Get("k"); err != nil || string(v) != "v" {
		t.Fatalf("Get = %q, %v", v, err)
	}
	if _, err := chain.Get("other"); err == nil {
		t.Fatal("expected the failing store's error when nothing matched")
	}
}

package spn

import (
	"errors"
	"sync"
	"testing"

	"cryptolab/internal/bitstr"
	"cryptolab/internal/cryptoerr"
)

func TestEngineUnconfigured(t *testing.T) {
	var e Engine
	if _, _, err := e.Encrypt(bitstr.MustParse("0000000000000000")); !errors.Is(err, cryptoerr.ErrUnconfigured) {
		t.Errorf("Encrypt err = %v", err)
	}
	if _, _, err := e.Decrypt(bitstr.MustParse("0000000000000000")); !errors.Is(err, cryptoerr.ErrUnconfigured) {
		t.Errorf("Decrypt err = %v", err)
	}
	if _, err := e.Config(); !errors.Is(err, cryptoerr.ErrUnconfigured) {
		t.Errorf("Config err = %v", err)
	}
}

func TestEngineFailedSetupKeepsPrevious(t *testing.T) {
	var e Engine
	if _, err := e.Setup(2, identitySBox, bitstr.MustParse("1111111111111111")); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Setup(2, "0000000000000000", bitstr.MustParse("1111111111111111")); !errors.Is(err, cryptoerr.ErrInvalidSBox) {
		t.Fatalf("bad setup err = %v", err)
	}
	ct, _, err := e.Encrypt(bitstr.MustParse("0000000000000000"))
	if err != nil {
		t.Fatal(err)
	}
	if ct.String() != "1111111111111111" {
		t.Errorf("Encrypt after failed setup = %s", ct)
	}
}

func TestEngineFailedFirstSetupStaysUnconfigured(t *testing.T) {
	var e Engine
	if _, err := e.Setup(9, identitySBox, bitstr.MustParse("1111111111111111")); err == nil {
		t.Fatal("expected error")
	}
	if _, err := e.Config(); !errors.Is(err, cryptoerr.ErrUnconfigured) {
		t.Errorf("Config err = %v", err)
	}
}

func TestEngineConcurrentSetupAndEncrypt(t *testing.T) {
	var e Engine
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = e.Setup(1+i%MaxRounds, heysSBox, bitstr.Random(BlockSize))
		}()
		go func() {
			defer wg.Done()
			_, _, err := e.Encrypt(bitstr.Random(BlockSize))
			if err != nil && !errors.Is(err, cryptoerr.ErrUnconfigured) {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := r.Engine("alice")
	if again := r.Engine("alice"); again != a {
		t.Fatal("second lookup returned a different engine")
	}
	if b := r.Engine("bob"); b == a {
		t.Fatal("learners share an engine")
	}
	r.Forget("alice")
	if r.Engine("alice") == a {
		t.Error("Forget did not drop the engine")
	}
}

func TestCommitFailureKeepsPrevious(t *testing.T) {
	var e Engine
	first, err := e.Setup(2, identitySBox, bitstr.MustParse("1111111111111111"))
	if err != nil {
		t.Fatal(err)
	}
	next, err := NewConfig(3, heysSBox, bitstr.MustParse("0000000000000000"))
	if err != nil {
		t.Fatal(err)
	}
	saveErr := errors.New("disk full")
	if err := e.Commit(next, func(*Config) error { return saveErr }); !errors.Is(err, saveErr) {
		t.Fatalf("Commit err = %v", err)
	}
	if got, _ := e.Config(); got != first {
		t.Errorf("Config after failed commit = %+v", got)
	}
}

func TestRestoreDoesNotOverwriteCommit(t *testing.T) {
	var e Engine
	saved, err := NewConfig(1, heysSBox, bitstr.MustParse("0000000000000000"))
	if err != nil {
		t.Fatal(err)
	}
	newer, err := NewConfig(3, heysSBox, bitstr.MustParse("1111111111111111"))
	if err != nil {
		t.Fatal(err)
	}

	loading := make(chan struct{})
	release := make(chan struct{})
	restored := make(chan error, 1)
	go func() {
		restored <- e.Restore(func() (*Config, error) {
			close(loading)
			<-release
			return saved, nil
		})
	}()
	<-loading

	committed := make(chan error, 1)
	go func() { committed <- e.Commit(newer, nil) }()
	close(release)
	if err := <-restored; err != nil {
		t.Fatal(err)
	}
	if err := <-committed; err != nil {
		t.Fatal(err)
	}
	if got, _ := e.Config(); got != newer {
		t.Errorf("Config = rounds %d, want the committed config", got.Rounds)
	}
}

func TestRestoreRetriesAfterError(t *testing.T) {
	var e Engine
	saved, err := NewConfig(1, heysSBox, bitstr.MustParse("0000000000000000"))
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	load := func() (*Config, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset")
		}
		return saved, nil
	}
	if err := e.Restore(load); err == nil {
		t.Fatal("expected the first load error")
	}
	if _, err := e.Config(); !errors.Is(err, cryptoerr.ErrUnconfigured) {
		t.Fatalf("Config after failed restore err = %v", err)
	}
	if err := e.Restore(load); err != nil {
		t.Fatal(err)
	}
	if err := e.Restore(load); err != nil || calls != 2 {
		t.Fatalf("restore ran %d times, err = %v", calls, err)
	}
	if got, _ := e.Config(); got != saved {
		t.Error("saved config not installed")
	}
}

package memory

import (
	"errors"
	"sync"
	"testing"
)

func TestMemoComputesOncePerKey(t *testing.T) {
	m := NewMemo[string, int]()
	calls := 0
	compute := func() (int, error) {
		calls++
		return calls * 10, nil
	}
	for i := 0; i < 3; i++ {
		v, err := m.GetOrCompute("NeoToken", compute)
		if err != nil {
			t.Fatalf("GetOrCompute: %v", err)
		}
		if v != 10 {
			t.Fatalf("v=%d want 10", v)
		}
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestMemoDoesNotCacheErrors(t *testing.T) {
	m := NewMemo[string, int]()
	boom := errors.New("boom")
	if _, err := m.GetOrCompute("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if _, ok := m.Get("k"); ok {
		t.Fatalf("error result was cached")
	}
	v, err := m.GetOrCompute("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("v=%d err=%v", v, err)
	}
}

func TestMemoConcurrentFirstWriteWins(t *testing.T) {
	m := NewMemo[int, int]()
	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := m.GetOrCompute(1, func() (int, error) { return 42, nil })
			results[i] = v
		}(i)
	}
	wg.Wait()
	for i, v := range results {
		if v != 42 {
			t.Fatalf("results[%d]=%d", i, v)
		}
	}
	if m.Len() != 1 {
		t.Fatalf("len=%d", m.Len())
	}
}

package task

import (
	"sync"
	"testing"
	"time"
)

func TestTask_ResultBlocksUntilSet(t *testing.T) {
	tk := New[int]()

	got := make(chan int)
	go func() {
		got <- tk.Result()
	}()

	select {
	case v := <-got:
		t.Fatalf("Result returned %d before SetResult", v)
	case <-time.After(10 * time.Millisecond):
	}

	tk.SetResult(42)

	select {
	case v := <-got:
		if v != 42 {
			t.Errorf("Result() = %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Result did not return after SetResult")
	}
}

func TestTask_RepeatedResult(t *testing.T) {
	tk := New[string]()
	tk.SetResult("done")

	for i := 0; i < 3; i++ {
		if v := tk.Result(); v != "done" {
			t.Errorf("Result() = %q, want %q", v, "done")
		}
	}
}

func TestTask_MultipleConsumers(t *testing.T) {
	tk := New[int]()

	const consumers = 8
	var wg sync.WaitGroup
	results := make([]int, consumers)
	for i := 0; i < consumers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = tk.Result()
		}()
	}

	tk.SetResult(7)
	wg.Wait()

	for i, v := range results {
		if v != 7 {
			t.Errorf("consumer %d got %d, want 7", i, v)
		}
	}
}

func TestTask_DoubleSetPanics(t *testing.T) {
	tk := New[int]()
	tk.SetResult(1)

	defer func() {
		if recover() == nil {
			t.Error("second SetResult should panic")
		}
	}()
	tk.SetResult(2)
}

func TestTask_TryResult(t *testing.T) {
	tk := New[int]()

	if _, ok := tk.TryResult(); ok {
		t.Error("TryResult should report false before SetResult")
	}

	tk.SetResult(5)

	if v, ok := tk.TryResult(); !ok || v != 5 {
		t.Errorf("TryResult() = %d, %v, want 5, true", v, ok)
	}
}

func TestTask_Done(t *testing.T) {
	tk := New[int]()

	select {
	case <-tk.Done():
		t.Fatal("Done closed before SetResult")
	default:
	}

	tk.SetResult(1)

	select {
	case <-tk.Done():
	default:
		t.Error("Done should be closed after SetResult")
	}
}

package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestMap_SetGetDelete(t *testing.T) {
	m := New[int]()

	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) = ok")
	}

	m.Set("a", 1)
	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}

	m.Set("a", 2)
	if v, _ := m.Get("a"); v != 2 {
		t.Errorf("Get(a) after overwrite = %d", v)
	}

	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Error("Get(a) after Delete = ok")
	}
}

func TestMap_GetOrSet(t *testing.T) {
	m := New[string]()

	v, loaded := m.GetOrSet("k", "first")
	if loaded || v != "first" {
		t.Errorf("GetOrSet(new) = %q, %v", v, loaded)
	}

	v, loaded = m.GetOrSet("k", "second")
	if !loaded || v != "first" {
		t.Errorf("GetOrSet(existing) = %q, %v", v, loaded)
	}
}

func TestMap_Len(t *testing.T) {
	m := New[int]()
	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i)
	}
	if got := m.Len(); got != 100 {
		t.Errorf("Len() = %d, want 100", got)
	}
}

func TestMap_Range(t *testing.T) {
	m := New[int]()
	for i := 0; i < 50; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i)
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return true
	})
	if visited != 50 {
		t.Errorf("Range visited %d entries, want 50", visited)
	}

	visited = 0
	m.Range(func(string, int) bool {
		visited++
		return visited < 10
	})
	if visited != 10 {
		t.Errorf("Range with early stop visited %d entries, want 10", visited)
	}
}

func TestMap_BadShardCount(t *testing.T) {
	for _, n := range []int{-1, 0, 3, 17} {
		m := NewShards[int](n)
		m.Set("k", 1)
		if v, ok := m.Get("k"); !ok || v != 1 {
			t.Errorf("NewShards(%d) map unusable", n)
		}
	}
}

func TestMap_Concurrent(t *testing.T) {
	m := New[int]()
	const workers = 16
	const keys = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < keys; i++ {
				key := fmt.Sprintf("w%d-k%d", w, i)
				m.Set(key, i)
				if v, ok := m.Get(key); !ok || v != i {
					t.Errorf("Get(%s) = %d, %v", key, v, ok)
				}
				if i%2 == 0 {
					m.Delete(key)
				}
			}
		}(w)
	}
	wg.Wait()

	if got := m.Len(); got != workers*keys/2 {
		t.Errorf("Len() = %d, want %d", got, workers*keys/2)
	}
}

func BenchmarkMap_Get(b *testing.B) {
	m := New[int]()
	for i := 0; i < 1024; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Get(fmt.Sprintf("key-%d", i%1024))
			i++
		}
	})
}

func BenchmarkMap_Set(b *testing.B) {
	m := New[int]()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Set(fmt.Sprintf("key-%d", i%1024), i)
			i++
		}
	})
}

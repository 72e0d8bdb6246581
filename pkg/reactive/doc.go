// Package reactive provides the reactive runtime that hyperdom bindings run on.
//
// Dependencies are tracked automatically at runtime: reading a Signal or Memo
// inside an Effect subscribes the effect to that value.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (schedules subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived computation:
//
//	doubled := NewMemo(func() int { return count.Get() * 2 })
//
// Effect runs side effects when dependencies change:
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
//
// # Scheduling
//
// An effect runs synchronously when it is created. Later changes only mark it
// pending; pending effects re-run when Flush is called. Any number of writes
// between two flushes collapse into a single re-run per effect. Flush is the
// equivalent of a microtask checkpoint, and Loop calls it after every task.
//
// # Ownership
//
// Every effect belongs to an Owner. Disposing an Owner disposes its effects,
// its cleanups and its child owners, which unsubscribes them from every
// source they read.
//
// # Thread Safety
//
// All primitives are safe to use from multiple goroutines. The tracking
// context is per-goroutine, so spawning goroutines requires explicit
// propagation via WithOwner.
package reactive

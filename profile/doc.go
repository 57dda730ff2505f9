// Package profile provides optional runtime profiling for scopex.
//
// Profiling uses [github.com/pkg/profile] and exists only in binaries built
// with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag every [Profiler] is a no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap memory profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace profiling
//
// # Usage
//
//	s := profile.New(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/profiles"),
//	).Start()
//	defer s.Stop()
//
// From the command line:
//
//	scopex --pprof-mode=cpu warm --from exprs.txt
//	go tool pprof -http=: ~/.cache/scopex/pprof/cpu.pprof
//
// The tagged build also imports [net/http/pprof], registering its handlers on
// [net/http.DefaultServeMux] for programs that serve it.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

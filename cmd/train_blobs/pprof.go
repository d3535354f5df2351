package main

import "runtime/pprof"
import "os"

// startProfile collects a CPU profile into default.pgo when -pgo is given.
func startProfile(enabled bool) (stop func()) {
	if !enabled {
		return func() {}
	}
	f, err := os.Create("default.pgo")
	if err != nil {
		println(err.Error())
		return func() {}
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		println(err.Error())
		f.Close()
		return func() {}
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}

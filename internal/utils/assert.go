package utils

import "fmt"

// Assert panics when cond is false.
func Assert(cond bool) {
	if cond {
		return
	}
	panic("assertion failed")
}

// AssertMsg logs v at ERROR level and panics with it when cond is false.
func AssertMsg(cond bool, v ...any) {
	if cond {
		return
	}
	LogError(v...)
	panic(fmt.Sprint(v...))
}

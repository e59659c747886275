package export

import (
	"fmt"
	"runtime/debug"
)

// catchPanic stores a recovered panic, with its stack, in *err. It must be
// deferred directly.
func catchPanic(err *error) {
	if v := recover(); v != nil {
		e, ok := v.(error)
		if !ok {
			e = fmt.Errorf("panic: %v", v)
		}
		*err = fmt.Errorf("%w\n%v", e, string(debug.Stack()))
	}
}

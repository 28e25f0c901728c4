package stacktrace

import (
	"slices"
	"testing"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/otptoken/internal/otptoken/usecase.(*Broker).SendOtpToken(...)
	/src/internal/otptoken/usecase/broker.go:88 +0x1d
main.main()
	/src/main.go:12 +0x25
`)

	want := []string{"internal/otptoken/usecase/broker.go:88"}
	if got := InternalPaths(stack); !slices.Equal(got, want) {
		t.Errorf("InternalPaths() = %v, want %v", got, want)
	}
}

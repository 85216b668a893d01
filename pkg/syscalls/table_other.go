//go:build !amd64 && !arm64

package syscalls

var NativeTable = Table{}

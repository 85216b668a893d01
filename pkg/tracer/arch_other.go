//go:build !amd64 && !arm64

package tracer

var nativeArch Arch

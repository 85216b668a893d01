package tracer

var nativeArch = ARM64

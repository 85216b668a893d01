package tracer

var nativeArch = AMD64

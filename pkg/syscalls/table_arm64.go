package syscalls

var NativeTable = ARM64Table

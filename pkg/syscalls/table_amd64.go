package syscalls

var NativeTable = AMD64Table

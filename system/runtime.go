package system

// RuntimeUnit is the small always-linked standard-library translation
// unit, carried forward from the original toolchain's std_programs
// (compiled from libc/libc.c and linked ahead of user code on every
// run). This port's libc surface is currently empty: no helper is yet
// worth a hand-written assembly body, so the unit is a placeholder that
// preserves the link-order slot user programs' runtime entry points
// will eventually occupy.
const RuntimeUnit = ""

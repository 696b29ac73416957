// Package taskmeta implements the fixed-layout binary task descriptor
// consumed by the kernel loader.
//
// The descriptor is a 176-byte little-endian record identifying one firmware
// task: handle, scheduling parameters, capability grants, memory layout,
// resource grants (shared memory, devices, DMA streams) and two 32-byte
// integrity digests. The layout is a bit-exact contract with the kernel:
// any field reordering, width change or endianness change is a breaking
// compatibility change guarded by the version field.
//
// Bit-packed sub-fields (JobFlags, TaskHandle) are plain uint32 values with
// masked read-modify-write accessors; offsets and widths are named constants.
package taskmeta

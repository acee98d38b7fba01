package device

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// A device buffer. Buffer memory is 4-byte aligned so that kernels can view
// it as float32 or uint32 slices.
type Buffer struct {
	// Associated Device.
	device *Device

	// A name for identifying the buffer.
	name string

	// Backing store.
	words []uint32

	// Allocated size in bytes.
	size int

	// Incremented whenever the buffer contents are replaced from the host.
	version uint64

	viewMutex   sync.Mutex
	view        interface{}
	viewVersion uint64
	viewValid   bool
}

// Get buffer name.
func (b *Buffer) Name() string {
	return b.name
}

// Get buffer size.
func (b *Buffer) Size() int {
	return b.size
}

// Get the buffer content version.
func (b *Buffer) Version() uint64 {
	return b.version
}

// Allocate a zero-filled buffer with the given size.
func (b *Buffer) Allocate(size int) error {
	if err := b.device.Err(); err != nil {
		return err
	}

	b.Release()
	b.words = make([]uint32, (size+3)/4)
	b.size = size
	b.version++
	return nil
}

// Allocate a buffer large enough to hold the given data and copy the data
// into it. The behavior of this method is undefined if a non-slice argument
// is passed or the slice elements contain pointers.
func (b *Buffer) AllocateAndWriteData(data interface{}) error {
	_, dataLen := getSliceData(data)
	if err := b.Allocate(dataLen); err != nil {
		return err
	}
	return b.WriteData(data, 0)
}

// Write data to the device buffer starting at the given byte offset. The
// behavior of this method is undefined if a non-slice argument is passed.
func (b *Buffer) WriteData(data interface{}, offset int) error {
	if err := b.device.Err(); err != nil {
		return err
	}
	if b.words == nil {
		return fmt.Errorf("cpu device (%s): write to buffer %s: %w", b.device.Name, b.name, ErrBufferNotAllocated)
	}

	dataPtr, dataLen := getSliceData(data)
	if offset < 0 || offset+dataLen > b.size {
		return fmt.Errorf("cpu device (%s): insufficient buffer space (%d) in %s for copying data of length %d at offset %d", b.device.Name, b.size, b.name, dataLen, offset)
	}

	if dataLen > 0 {
		copy(b.Bytes()[offset:offset+dataLen], unsafe.Slice((*byte)(dataPtr), dataLen))
	}
	b.version++
	return nil
}

// Read data from device buffer into the supplied host buffer. If size is <= 0
// then ReadData will read the entire buffer. Both src and dst offsets are
// specified in bytes.
func (b *Buffer) ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error {
	if err := b.device.Err(); err != nil {
		return err
	}
	if b.words == nil {
		return fmt.Errorf("cpu device (%s): read from buffer %s: %w", b.device.Name, b.name, ErrBufferNotAllocated)
	}

	if size <= 0 {
		size = b.size - srcOffset
	}

	dataPtr, dataLen := getSliceData(hostBuffer)
	if srcOffset < 0 || srcOffset+size > b.size || dstOffset < 0 || dstOffset+size > dataLen {
		return fmt.Errorf("cpu device (%s): invalid read of %d bytes from %s (offset %d) into host buffer of length %d (offset %d)", b.device.Name, size, b.name, srcOffset, dataLen, dstOffset)
	}

	if size > 0 {
		copy(unsafe.Slice((*byte)(dataPtr), dataLen)[dstOffset:dstOffset+size], b.Bytes()[srcOffset:srcOffset+size])
	}
	return nil
}

// Release buffer.
func (b *Buffer) Release() {
	b.words = nil
	b.size = 0

	b.viewMutex.Lock()
	b.view = nil
	b.viewValid = false
	b.viewMutex.Unlock()
}

// Get the buffer contents as bytes.
func (b *Buffer) Bytes() []byte {
	if len(b.words) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.words[0])), b.size)
}

// Get the buffer contents as float32 values.
func (b *Buffer) Float32s() []float32 {
	if len(b.words) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b.words[0])), b.size/4)
}

// Get the buffer contents as uint32 values.
func (b *Buffer) Uint32s() []uint32 {
	return b.words[:b.size/4]
}

// Get a decoded host-side view of the buffer. The decode function is only
// invoked when the buffer contents changed since the view was last built.
func (b *Buffer) View(decode func(data []byte) interface{}) interface{} {
	b.viewMutex.Lock()
	defer b.viewMutex.Unlock()

	if !b.viewValid || b.viewVersion != b.version {
		b.view = decode(b.Bytes())
		b.viewVersion = b.version
		b.viewValid = true
	}
	return b.view
}

// Given an interface{} containing a slice return a pointer to its data and
// its length in bytes.
func getSliceData(data interface{}) (unsafe.Pointer, int) {
	reflVal := reflect.ValueOf(data)

	if reflVal.Kind() != reflect.Slice {
		panic("getSliceData: this function only supports slices")
	}

	sliceElemCount := reflVal.Len()
	if sliceElemCount == 0 {
		return nil, 0
	}

	return reflVal.UnsafePointer(),
		sliceElemCount * int(reflVal.Type().Elem().Size())
}

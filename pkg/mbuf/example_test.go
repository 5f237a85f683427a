// Package mbuf provides examples of buffer, pool, and queue usage.
package mbuf_test

import (
	"fmt"

	"github.com/ajitpratap0/netbuf/pkg/mbuf"
)

// Example demonstrates the basic borrow, stage, consume, return cycle.
func Example() {
	p, err := mbuf.NewPool(mbuf.Config{ChunkSize: 80, MaxIdle: 4})
	if err != nil {
		panic(err)
	}
	defer p.Close()

	b, err := p.Borrow()
	if err != nil {
		panic(err)
	}

	// Stage a protocol frame
	b.Copy([]byte("set key 5\r\nvalue\r\n"))
	fmt.Printf("staged %d bytes, %d writable\n", b.Len(), b.Available())

	// Consume the command line
	b.Discard(11)
	fmt.Printf("unread: %q\n", b.Bytes())

	p.Return(b)

	// Output:
	// staged 18 bytes, 46 writable
	// unread: "value\r\n"
}

// ExampleBuffer_Writable shows the two-step staging used around socket
// reads: expose writable space, then account for the bytes written.
func ExampleBuffer_Writable() {
	p, err := mbuf.NewPool(mbuf.Config{ChunkSize: 80, MaxIdle: 4})
	if err != nil {
		panic(err)
	}
	defer p.Close()

	b, _ := p.Borrow()
	defer p.Return(b)

	// A socket read fills some prefix of the writable region
	n := copy(b.Writable(), "END\r\n")
	b.Advance(n)

	fmt.Printf("received %q\n", b.Bytes())

	// Output:
	// received "END\r\n"
}

// ExampleBuffer_ShiftLeft shows reclaiming consumed bytes to make room
// for the rest of a frame.
func ExampleBuffer_ShiftLeft() {
	p, err := mbuf.NewPool(mbuf.Config{ChunkSize: 48, MaxIdle: 4})
	if err != nil {
		panic(err)
	}
	defer p.Close()

	b, _ := p.Borrow()
	defer p.Return(b)

	b.Copy([]byte("get first\r\nget second"))
	b.Discard(11) // first command consumed
	fmt.Printf("before: %d unread, %d writable\n", b.Len(), b.Available())

	b.ShiftLeft()
	fmt.Printf("after:  %d unread, %d writable\n", b.Len(), b.Available())

	// Output:
	// before: 10 unread, 11 writable
	// after:  10 unread, 22 writable
}

// ExamplePool_Split carves a buffer at a frame boundary so the complete
// frame can be processed while the fragment waits for the rest.
func ExamplePool_Split() {
	p, err := mbuf.NewPool(mbuf.Config{ChunkSize: 80, MaxIdle: 4})
	if err != nil {
		panic(err)
	}
	defer p.Close()

	b, _ := p.Borrow()

	// One complete frame and the start of the next
	b.Copy([]byte("get key1\r\nget ke"))

	rest, err := p.Split(b, 10, nil)
	if err != nil {
		panic(err)
	}

	fmt.Printf("complete: %q\n", b.Bytes())
	fmt.Printf("fragment: %q\n", rest.Bytes())

	p.Return(b)
	p.Return(rest)

	// Output:
	// complete: "get key1\r\n"
	// fragment: "get ke"
}

// ExampleQueue chains buffers on a connection's send queue and drains
// them in arrival order.
func ExampleQueue() {
	p, err := mbuf.NewPool(mbuf.Config{ChunkSize: 48, MaxIdle: 4})
	if err != nil {
		panic(err)
	}
	defer p.Close()

	var sendq mbuf.Queue
	for _, payload := range []string{"VALUE a 0 1\r\n", "END\r\n"} {
		b, _ := p.Borrow()
		b.Copy([]byte(payload))
		sendq.Push(b)
	}

	fmt.Printf("queued: %d buffers, %d bytes pending\n", sendq.Len(), sendq.TotalLen())

	for b := sendq.Pop(); b != nil; b = sendq.Pop() {
		fmt.Printf("flush %q\n", b.Bytes())
		p.Return(b)
	}

	// Output:
	// queued: 2 buffers, 18 bytes pending
	// flush "VALUE a 0 1\r\n"
	// flush "END\r\n"
}

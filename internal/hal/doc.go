// Package hal abstracts the node's two GPIO lines: the button input whose
// rising edge raises the interrupt, and the LED output.
//
// Backends:
//   - sim: in-memory lines, pressed from code or the bench console
//   - gpiocdev: Linux GPIO character device (go-gpiocdev), Linux only
//
// Edge handlers run in interrupt context. For gpiocdev that is the library's
// event goroutine; for sim it is whichever goroutine calls Press. Handlers
// must not block.
package hal

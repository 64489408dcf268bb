// Package generator turns a push-style producer into a pull-style stream.
//
// A Generator runs its producer in one background goroutine that is started
// lazily on the first HasNext call. Producer and consumer hand items over
// through a single slot: the producer publishes one item and then waits until
// the consumer asks for the next one, so it is never more than one item ahead.
//
// Example usage:
//
//	gen := generator.New(ctx, func(ctx context.Context, yield func(int) error) error {
//		for i := 0; i < 3; i++ {
//			if err := yield(i); err != nil {
//				return err
//			}
//		}
//		return nil
//	})
//	defer gen.Close()
//
//	for v, err := range gen.All() {
//		if err != nil {
//			return err
//		}
//		fmt.Println(v)
//	}
//
// The owner of a Generator must call Close on every exit path. Close cancels
// the producer context and waits for the goroutine to return; nothing relies
// on garbage collection to stop a producer.
//
// State machine:
//
//	Idle -> Running -> Finished | Failed
//	Idle | Running -> Closed (Close before natural termination)
//
// Terminal states are sticky. A producer failure is reported by exactly one
// HasNext or Next call; after that the generator reports exhaustion.
package generator
